package tape

// Style selects what the text field of a line shows.
type Style int

const (
	// StyleDefinition shows the dictionary definition behind the newest
	// entry, with / standing in for untranslates.
	StyleDefinition Style = iota

	// StyleTranslation shows the formatted text the entry produced.
	StyleTranslation
)

// ParseStyle maps a configuration value to a Style. Anything but
// "translation" means StyleDefinition.
func ParseStyle(s string) Style {
	if s == "translation" {
		return StyleTranslation
	}
	return StyleDefinition
}

func (s Style) String() string {
	if s == StyleTranslation {
		return "translation"
	}
	return "definition"
}
