package types

// Version is overridden at build time with -ldflags "-X ...types.Version=..."
var Version = "dev"
