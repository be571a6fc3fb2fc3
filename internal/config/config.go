package config

import "time"

// DefaultTrainURL is where the training service listens when run locally
const DefaultTrainURL = "http://localhost:5000/train"

// Config holds the application configuration
type Config struct {
	Port         int
	TrainURL     string
	TrainTimeout time.Duration // zero waits for the training service indefinitely
	Version      string
}
