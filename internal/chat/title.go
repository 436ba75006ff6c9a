package chat

// Conversation titles are derived from the first utterance
const (
	TitleMaxLength = 50
	TitleEllipsis  = "..."
)

// DeriveTitle returns the utterance when it fits in TitleMaxLength characters, otherwise
// its first TitleMaxLength characters followed by TitleEllipsis
func DeriveTitle(utterance string) string {
	runes := []rune(utterance)
	if len(runes) <= TitleMaxLength {
		return utterance
	}
	return string(runes[:TitleMaxLength]) + TitleEllipsis
}
