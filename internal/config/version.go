package config

// Version is the model parser build version, set with
// -ldflags "-X github.com/jsfong/model-parser/internal/config.Version=<tag>".
var Version = "dev"
