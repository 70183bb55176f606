package docs

import (
	"github.com/go-swagno/swagno"
	"github.com/go-swagno/swagno/components/endpoint"
	"github.com/go-swagno/swagno/components/http/response"
	"github.com/go-swagno/swagno/components/mime"
	"github.com/go-swagno/swagno/components/parameter"
)

// SignatureData represents an enrolled signature
type SignatureData struct {
	ID         string   `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	Name       string   `json:"name" example:"Anna"`
	SpoofScore *float64 `json:"spoof_score,omitempty" example:"0.12"`
	CreatedAt  string   `json:"created_at" example:"2024-01-01T00:00:00Z"`
}

// ListSignaturesData represents the gallery listing
type ListSignaturesData struct {
	Signatures []SignatureData `json:"signatures"`
	Count      int             `json:"count" example:"3"`
}

// SessionStateData represents the session lifecycle stage
type SessionStateData struct {
	State       string `json:"state" example:"matching"`
	GallerySize int    `json:"gallery_size" example:"3"`
}

// RecognitionData represents the latest per-frame result
type RecognitionData struct {
	FaceFound  bool           `json:"face_found" example:"true"`
	Match      *SignatureData `json:"match,omitempty"`
	SpoofScore *float64       `json:"spoof_score,omitempty" example:"0.12"`
	At         string         `json:"at" example:"2024-01-01T00:00:00Z"`
}

// SaveRequestData represents the enrollment request body
type SaveRequestData struct {
	Name string `json:"name" example:"Anna"`
}

// OpenSaveData reports whether the save dialog opened
type OpenSaveData struct {
	Opened bool `json:"opened" example:"true"`
}

// StatusData is a simple status acknowledgement
type StatusData struct {
	Status string `json:"status" example:"matching"`
}

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Code    string `json:"code" example:"VALIDATION_FAILED"`
	Message string `json:"message" example:"Request validation failed"`
}

// NewSwagger creates and configures the Swagger documentation
func NewSwagger() *swagno.Swagger {
	sw := swagno.New(swagno.Config{
		Title:       "Vigil Live Recognition API",
		Version:     "v1.0.0",
		Description: "Live face recognition session service: camera-driven matching against an enrolled signature gallery",
		Host:        "localhost:3000",
		Path:        "/v1",
	})

	endpoints := []*endpoint.EndPoint{
		// GET /v1/signatures - list gallery
		endpoint.New(
			endpoint.GET,
			"/signatures",
			endpoint.WithTags("Signatures"),
			endpoint.WithSummary("List enrolled signatures"),
			endpoint.WithDescription("Returns the enrolled gallery in enrollment order, the same order matching iterates"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(ListSignaturesData{}, "200", "Gallery listing"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "INTERNAL_ERROR", Message: "An unexpected error occurred"}, "500", "Internal Server Error"),
			}),
		),

		// DELETE /v1/signatures/{id} - delete enrollment
		endpoint.New(
			endpoint.DELETE,
			"/signatures/{id}",
			endpoint.WithTags("Signatures"),
			endpoint.WithSummary("Delete an enrolled signature"),
			endpoint.WithParams(
				parameter.StrParam("id", parameter.Path, parameter.WithDescription("Signature identifier")),
			),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(struct{}{}, "204", "Signature deleted"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "SIGNATURE_NOT_FOUND", Message: "Signature not found"}, "404", "Not Found"),
				response.New(ErrorResponse{Code: "VALIDATION_FAILED", Message: "Request validation failed"}, "422", "Unprocessable Entity"),
			}),
		),

		// GET /v1/session - session state
		endpoint.New(
			endpoint.GET,
			"/session",
			endpoint.WithTags("Session"),
			endpoint.WithSummary("Session state"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(SessionStateData{}, "200", "Current lifecycle stage"),
			}),
		),

		// POST /v1/session/bind - start the session
		endpoint.New(
			endpoint.POST,
			"/session/bind",
			endpoint.WithTags("Session"),
			endpoint.WithSummary("Bind the camera and start matching"),
			endpoint.WithDescription("Loads the gallery snapshot, attaches the camera and enters the matching state"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(StatusData{}, "200", "Session is matching"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "SESSION_ACTIVE", Message: "Recognition session is already bound"}, "409", "Conflict"),
				response.New(ErrorResponse{Code: "CAMERA_BIND_FAILED", Message: "Failed to bind the camera analysis pipeline"}, "503", "Service Unavailable"),
				response.New(ErrorResponse{Code: "GALLERY_LOAD_FAILED", Message: "Failed to load the signature gallery"}, "503", "Service Unavailable"),
			}),
		),

		// GET /v1/session/result - latest recognition result
		endpoint.New(
			endpoint.GET,
			"/session/result",
			endpoint.WithTags("Session"),
			endpoint.WithSummary("Latest recognition result"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(RecognitionData{}, "200", "Latest per-frame result"),
				response.New(struct{}{}, "204", "No frame evaluated yet"),
			}),
		),

		// POST /v1/session/save/open - open enrollment
		endpoint.New(
			endpoint.POST,
			"/session/save/open",
			endpoint.WithTags("Enrollment"),
			endpoint.WithSummary("Open the save dialog"),
			endpoint.WithDescription("Freezes the current unmatched capture and suspends the camera; ignored unless the latest frame has an unmatched face"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(OpenSaveData{}, "200", "Whether the dialog opened"),
			}),
		),

		// POST /v1/session/save - enroll the frozen capture
		endpoint.New(
			endpoint.POST,
			"/session/save",
			endpoint.WithTags("Enrollment"),
			endpoint.WithSummary("Save the frozen capture under a name"),
			endpoint.WithDescription("Persists the capture, reloads the gallery snapshot and resumes matching"),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(StatusData{}, "201", "Signature enrolled"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "NAME_TOO_SHORT", Message: "Signature name must be longer than 3 characters"}, "422", "Unprocessable Entity"),
				response.New(ErrorResponse{Code: "SAVE_NOT_OPEN", Message: "No enrollment in progress"}, "409", "Conflict"),
				response.New(ErrorResponse{Code: "SAVE_IN_PROGRESS", Message: "An enrollment is already being saved"}, "409", "Conflict"),
				response.New(ErrorResponse{Code: "INTERNAL_ERROR", Message: "An unexpected error occurred"}, "500", "Internal Server Error"),
			}),
		),

		// POST /v1/session/save/cancel - abandon enrollment
		endpoint.New(
			endpoint.POST,
			"/session/save/cancel",
			endpoint.WithTags("Enrollment"),
			endpoint.WithSummary("Cancel the save dialog"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(StatusData{}, "200", "Session resumed matching"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "SAVE_NOT_OPEN", Message: "No enrollment in progress"}, "409", "Conflict"),
			}),
		),

		// POST /v1/session/flip - switch cameras
		endpoint.New(
			endpoint.POST,
			"/session/flip",
			endpoint.WithTags("Session"),
			endpoint.WithSummary("Switch to the alternate camera"),
			endpoint.WithDescription("Valid while matching only; in any other state the request is ignored"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(StatusData{}, "200", "Flip handled"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "CAMERA_BIND_FAILED", Message: "Failed to bind the camera analysis pipeline"}, "503", "Service Unavailable"),
			}),
		),
	}

	sw.AddEndpoints(endpoints)
	return sw
}
