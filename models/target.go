package models

// WatchTarget is one monitored listing page and the ChatWork room that hears about it.
type WatchTarget struct {
	URL         string `yaml:"url" json:"url"`
	DisplayName string `yaml:"display_name" json:"display_name"`
	Category    string `yaml:"category" json:"category"`
	ChannelID   string `yaml:"channel_id" json:"channel_id"`
	Index       int    `yaml:"-" json:"index"`
}

// Key identifies the target in the snapshot document.
func (t WatchTarget) Key() string {
	return t.DisplayName + "_" + t.Category
}
