package settings

// Settings holds user preferences that can be overridden on disk. CLI flags
// take precedence over these, which take precedence over the defaults.
type Settings struct {
	// No omitempty on the marker fields so explicit overrides persist
	MarkerColor     string `yaml:"marker_color"`
	MarkerSize      int    `yaml:"marker_size"`
	MarkerThickness int    `yaml:"marker_thickness"`
	// Maximum number of decoded frames held in the scrub cache
	FrameCacheFrames int `yaml:"frame_cache_frames"`
	// InstanceID is a unique identifier for this installation (generated once)
	InstanceID string `yaml:"instance_id,omitempty"`
}

// defaultSettings defines the built-in defaults.
var defaultSettings = Settings{
	MarkerColor:      "blue",
	MarkerSize:       40,
	MarkerThickness:  2,
	FrameCacheFrames: 120,
}
