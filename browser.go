package htmlrender

import (
	"fmt"

	"github.com/go-rod/rod/lib/launcher"
)

// resolveBrowser downloads a compatible Chromium binary if one is not
// already cached and returns the path to the executable. The binary is
// stored in ~/.cache/rod/browser (Unix) or %APPDATA%\rod\browser (Windows).
func resolveBrowser() (string, error) {
	path, err := launcher.NewBrowser().Get()
	if err != nil {
		return "", fmt.Errorf("%w: downloading browser: %v", ErrBrowserLaunch, err)
	}
	return path, nil
}

// lookupBrowser returns a Chrome executable found on the system, or an
// empty string when none is installed.
func lookupBrowser() string {
	path, _ := launcher.LookPath()
	return path
}
