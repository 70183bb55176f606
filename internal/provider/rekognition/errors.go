package rekognition

import "errors"

var (
	// ErrInvalidCredentials indicates that AWS credentials are invalid or missing.
	ErrInvalidCredentials = errors.New("invalid or missing AWS credentials")

	// ErrInvalidImage indicates that the image could not be processed by Rekognition.
	ErrInvalidImage = errors.New("invalid image for rekognition")

	// ErrThrottled indicates that the Rekognition API rejected the call due to rate limits.
	ErrThrottled = errors.New("rekognition request throttled")
)
