package glubblog

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	msgSampleTitle   = "BlogHolder.SUCTITLE"
	msgSampleTags    = "BlogHolder.SUCTAGS"
	msgSampleContent = "BlogHolder.SUCCONTENT"
)

// SupportedLanguages lists the languages with translated default content.
var SupportedLanguages = []language.Tag{language.English, language.German}

var languageMatcher = language.NewMatcher(SupportedLanguages)

// MatchLanguage picks the best supported language for an Accept-Language
// style list. It falls back to English.
func MatchLanguage(accept ...string) language.Tag {
	tag, _ := language.MatchStrings(languageMatcher, accept...)
	base, _ := tag.Base()
	for _, t := range SupportedLanguages {
		if b, _ := t.Base(); b == base {
			return t
		}
	}
	return language.English
}

func init() {
	en := language.English
	message.SetString(en, msgSampleTitle, "Blog module successfully installed")
	message.SetString(en, msgSampleTags, "glubblog, blog")
	message.SetString(en, msgSampleContent, "Congratulations, the blog module has been successfully installed. "+
		"This blog entry can be safely deleted. You can configure aspects of your blog "+
		"(such as the widgets displayed in the sidebar) in [the CMS](admin).")

	de := language.German
	message.SetString(de, msgSampleTitle, "Blog-Modul erfolgreich installiert")
	message.SetString(de, msgSampleTags, "glubblog, blog")
	message.SetString(de, msgSampleContent, "Herzlichen Glückwunsch, das Blog-Modul wurde erfolgreich installiert. "+
		"Dieser Eintrag kann gefahrlos gelöscht werden. Die Einstellungen des Blogs "+
		"(etwa die Widgets in der Seitenleiste) lassen sich im [CMS](admin) ändern.")
}
