// internal/classify/options.go
package classify

import "strings"

// Category is the sub-category of a checkbox group.
type Category string

const (
	CategoryGeneric    Category = "generic"
	CategoryBakery     Category = "bakery-sweet-treats"
	CategoryBreakfast  Category = "breakfast-items"
	CategoryProblem    Category = "problem-experience"
	CategoryUnassigned Category = ""
)

// CheckboxRule says which options a checkbox group prefers and how many it
// may select.
type CheckboxRule struct {
	Category Category
	Keywords []string
	Cap      int
}

var (
	bakeryRule    = CheckboxRule{CategoryBakery, []string{"McFlurry", "Sundae", "Shake", "Cone"}, 2}
	breakfastRule = CheckboxRule{CategoryBreakfast, []string{"Hotcakes", "Hashbrown", "Burrito", "McGriddle", "Biscuit"}, 3}
	genericRule   = CheckboxRule{CategoryGeneric, nil, 3}
)

// CheckboxRuleFor classifies a checkbox group by its legend.
func CheckboxRuleFor(legend string) CheckboxRule {
	lower := strings.ToLower(legend)
	switch {
	case strings.Contains(lower, "bakery & sweet treats"):
		return bakeryRule
	case strings.Contains(lower, "breakfast items"):
		return breakfastRule
	}
	return genericRule
}

// Problem keywords matched against checkbox labels, ignoring case.
var (
	CommonProblems = []string{"Accuracy of order", "Quality of food", "Speed of service", "cleanliness", "Product availability"}
	MinorProblems  = []string{"Friendliness of employees", "Speed of service", "cleanliness"}
)

// ComplaintTemplates fill the free-text field of an "Other" problem option.
var ComplaintTemplates = []string{
	"Employee was rude",
	"Wrong order twice",
	"Food was cold",
	"Long waiting time",
	"Dirty tables",
}

// CommentTemplates answer open-ended comment boxes.
var CommentTemplates = []string{
	"Me encantó la atención del personal, fueron muy amables.",
	"La comida estuvo deliciosa y el local muy limpio.",
	"El servicio fue rápido y eficiente, volveré pronto.",
	"Todo estuvo perfecto, muchas gracias.",
	"Excelente experiencia, felicidades al equipo.",
}

// placeholderPhrases are dropdown entries that are not real answers. An
// option is excluded when its label equals or starts with one of them.
var placeholderPhrases = []string{
	"- select one -",
	"select one",
	"--",
	"prefer not to answer",
	"no deseo responder",
	"prefiero no contestar",
}

// IsPlaceholderOption reports whether a dropdown option must never be chosen.
func IsPlaceholderOption(label, value string) bool {
	if strings.TrimSpace(value) == "" {
		return true
	}
	l := strings.ToLower(strings.TrimSpace(label))
	if l == "" {
		return true
	}
	for _, p := range placeholderPhrases {
		if strings.HasPrefix(l, p) {
			return true
		}
	}
	return false
}
