package analyzer

import (
	"errors"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/SercanAkan88/siteguard/internal/model"
)

var errNilLogger = errors.New("analyzer: nil logger")

const headingSelector = "h1, h2, h3, h4, h5, h6"

const submitSelector = `button[type="submit"], input[type="submit"]`

// nameRule is one step of the form-name fallback chain. Rules run in order
// and the first non-empty result wins, which keeps each heuristic
// independently testable.
type nameRule struct {
	name    string
	extract func(form *goquery.Selection) string
}

var nameRules = []nameRule{
	{"preceding-heading", func(form *goquery.Selection) string {
		return strings.TrimSpace(form.PrevAllFiltered(headingSelector).First().Text())
	}},
	{"inner-heading", func(form *goquery.Selection) string {
		return strings.TrimSpace(form.Find(headingSelector).First().Text())
	}},
	{"legend", func(form *goquery.Selection) string {
		return strings.TrimSpace(form.Find("legend").First().Text())
	}},
	{"id-or-name", func(form *goquery.Selection) string {
		if id := getAttr(form, "id"); id != "" {
			return id
		}
		return getAttr(form, "name")
	}},
}

// languageRule maps fixed keyword sets to a language hint. This is a coarse
// signal for wording alert descriptions, not a language detector.
type languageRule struct {
	language string
	keywords []string
}

var languageRules = []languageRule{
	{"Turkish", []string{"gönder", "iletişim"}},
	{"English", []string{"send", "contact"}},
	{"German", []string{"senden", "kontakt"}},
	{"French", []string{"envoyer", "contactez"}},
	{"Spanish", []string{"enviar", "contacto"}},
}

// extractForms walks every form element and derives the heuristic identity
// used later when a form issue must be described to a human.
func extractForms(doc *goquery.Document, pageURL string) []model.Form {
	forms := []model.Form{}

	doc.Find("form").Each(func(i int, form *goquery.Selection) {
		action := getAttr(form, "action")
		method := getAttr(form, "method")
		if method == "" {
			method = "get"
		}

		id := getAttr(form, "id")
		class := getAttr(form, "class")

		f := model.Form{
			Index:           i + 1,
			Action:          action,
			Method:          method,
			Inputs:          form.Find("input, textarea, select").Length(),
			HasEmail:        form.Find(`input[type="email"], input[name*="email"]`).Length() > 0,
			HasSubmit:       form.Find(submitSelector).Length() > 0,
			Name:            truncate(resolveFormName(form), 50),
			SubmitButtonTxt: truncate(submitButtonText(form), 30),
			PageSection:     pageSection(form),
			FormID:          id,
			Language:        detectLanguage(form.Text()),
			PageURL:         pageURL,
		}

		f.IsContactForm = strings.Contains(action, "contact") ||
			strings.Contains(id, "contact") ||
			strings.Contains(class, "contact") ||
			form.Find("textarea").Length() > 0

		forms = append(forms, f)
	})

	return forms
}

func resolveFormName(form *goquery.Selection) string {
	for _, rule := range nameRules {
		if name := rule.extract(form); name != "" {
			return name
		}
	}
	return ""
}

func submitButtonText(form *goquery.Selection) string {
	btn := form.Find(submitSelector).First()
	if btn.Length() == 0 {
		return ""
	}
	if text := strings.TrimSpace(btn.Text()); text != "" {
		return text
	}
	return getAttr(btn, "value")
}

// pageSection is the id of the nearest ancestor carrying an id, locating
// the form within the page for humans ("in the 'footer' section").
func pageSection(form *goquery.Selection) string {
	return getAttr(form.ParentsFiltered("[id]").First(), "id")
}

func detectLanguage(formText string) string {
	lower := strings.ToLower(formText)
	for _, rule := range languageRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.language
			}
		}
	}
	return "unknown"
}
