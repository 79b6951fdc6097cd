package version

// AppVersion is the manimwatch version. Overridden at build time with
// -ldflags "-X manimwatch/internal/version.AppVersion=...".
var AppVersion = "0.1.0"
