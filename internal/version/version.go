package version

// Set at build time via -ldflags "-X rocketshoes-cart/internal/version.Version=...".
var (
	Version   = "dev"
	Commit    = "none"
	BuildTime = "unknown"
)
