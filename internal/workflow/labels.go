package workflow

import (
	"golang.org/x/text/language"

	"minter/internal/domain"
)

var labelLanguages = []language.Tag{language.English, language.Indonesian}

var labelMatcher = language.NewMatcher(labelLanguages)

var stateLabels = map[language.Tag]map[domain.State]string{
	language.English: {
		domain.StateGenerating: "Generating Image...",
		domain.StateUploading:  "Uploading Image and Metadata to IPFS...",
		domain.StateMinting:    "Waiting for Mint...",
	},
	language.Indonesian: {
		domain.StateGenerating: "Membuat Gambar...",
		domain.StateUploading:  "Mengunggah Gambar dan Metadata ke IPFS...",
		domain.StateMinting:    "Menunggu Mint...",
	},
}

// Label returns the status message for state in the closest supported
// locale. Idle has no message.
func Label(state domain.State, locale string) string {
	tag := language.English
	if locale != "" {
		_, idx := language.MatchStrings(labelMatcher, locale)
		tag = labelLanguages[idx]
	}
	return stateLabels[tag][state]
}
