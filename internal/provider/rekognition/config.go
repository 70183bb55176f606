package rekognition

// Config holds configuration for the AWS Rekognition provider.
type Config struct {
	// Region is the AWS region where the Rekognition service will be used
	// (e.g., "us-east-1").
	Region string

	// MinConfidence is the detection confidence below which a face detail
	// is ignored, in percent.
	MinConfidence float64
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		Region:        "us-east-1",
		MinConfidence: 80,
	}
}
