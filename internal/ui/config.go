// Package ui is the ebiten-backed host window: it polls keyboard state into
// joypad button presses, blits the VM's framebuffer into a texture once per
// update, and owns nothing the core itself needs to know about.
package ui

// Config contains window-related settings.
type Config struct {
	Title string // window title
	Scale int    // integer upscaling factor
}

// Defaults fills unset fields with reasonable defaults.
func (c *Config) Defaults() {
	if c.Title == "" {
		c.Title = "gbvm"
	}
	if c.Scale <= 0 {
		c.Scale = 3
	}
}
