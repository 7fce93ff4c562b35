package types

// PinConfig assigns driver pin numbers to the panel and button roles
type PinConfig struct {
	Data         int `json:"data"`
	Clock        int `json:"clock"`
	Latch        int `json:"latch"`
	RedButton    int `json:"red_button"`
	YellowButton int `json:"yellow_button"`
}

// DriverConfig selects the GPIO backend
type DriverConfig struct {
	// Backend is one of "cdev", "sysfs" or "omega2"
	Backend string `json:"backend"`
	// Chip is the gpiochip name for cdev, or the sysfs root for sysfs
	Chip string `json:"chip"`
}

// DisplayConfig represents the configuration for the display
type DisplayConfig struct {
	FPS  int       `json:"fps"`
	Pins PinConfig `json:"pins"`
}

// PlayerConfig controls the built-in frame producer
type PlayerConfig struct {
	// Pattern is one of "off", "fill", "checkerboard", "text" or "svg"
	Pattern string `json:"pattern"`
	Text    string `json:"text"`
	SVGPath string `json:"svg_path"`
	// Interval is the producer tick in milliseconds
	Interval int `json:"interval_ms"`
}

// RemoteConfig represents the configuration for the websocket endpoint
type RemoteConfig struct {
	Enabled bool   `json:"enabled"`
	Listen  string `json:"listen"`
}
