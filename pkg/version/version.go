package version

// GitVersion is stamped by the build, e.g.
// -ldflags "-X pco2proc/pkg/version.GitVersion=$(git describe --tags --always)".
var GitVersion = "dev"
