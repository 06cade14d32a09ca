package version

// GitVersion is stamped at build time via -ldflags.
var GitVersion = "dev"
