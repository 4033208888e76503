// internal/survey/selectors.go
package survey

import (
	"strings"

	"github.com/xkilldash9x/surveyor/internal/driver"
)

// Structural descriptors of the survey markup. Scoped descriptors start with
// ".//" and are evaluated relative to a table, row or fieldset.
const (
	likelihoodTables   driver.Descriptor = "//table[contains(@class,'HighlyLikelyDESC')]"
	satisfactionTables driver.Descriptor = "//table[contains(@class,'HighlySatisfiedNeitherDESC')]"
	radioTables        driver.Descriptor = "//table[contains(@class,'Inputtyperbl') and not(contains(@class,'HighlySatisfiedNeitherDESC'))]"
	tableRows          driver.Descriptor = ".//tbody//tr[contains(@id,'FNSR')]"
	rowText            driver.Descriptor = ".//th[@class='LeftColumn']"
	naColumn           driver.Descriptor = ".//th[contains(@id,'HighlySatisfiedNeitherDESC9')]"
	radios             driver.Descriptor = ".//input[@type='radio']"

	dropdowns     driver.Descriptor = "//select[not(contains(@class,'hidden')) and not(@aria-hidden='true')]"
	selectOptions driver.Descriptor = ".//option"

	optionFieldsets driver.Descriptor = "//fieldset[contains(@class,'inputtypeopt')]"
	radioFieldsets  driver.Descriptor = "//fieldset[contains(@class,'inputtyperblv') and not(ancestor::table) and not(contains(@class,'inputtypeopt'))]"
	legend          driver.Descriptor = ".//legend"
	cataOptions     driver.Descriptor = ".//div[contains(@class,'cataOption')]"
	checkbox        driver.Descriptor = ".//input[@type='checkbox']"
	anyLabel        driver.Descriptor = ".//label"
	otherLabel      driver.Descriptor = ".//label[contains(., 'Other')]"
	textInput       driver.Descriptor = ".//input[@type='text']"
	namedRadios     driver.Descriptor = ".//input[@type='radio' and @name]"

	textareas driver.Descriptor = "//textarea[not(@disabled) and not(contains(@class,'hidden'))]"

	timeoutDialog  driver.Descriptor = "//div[contains(@class,'sessionTimeoutDialog')]"
	extendButton   driver.Descriptor = "//button[contains(text(),'Extend Session')]"
	errorIndicator driver.Descriptor = "//*[contains(text(),'error') or contains(@class,'error')]"

	submitNext driver.Descriptor = "//input[@type='submit' and contains(@value,'Next')]"
	nextButton driver.Descriptor = "//*[@id='NextButton']"

	completionMarker driver.Descriptor = "//*[contains(text(),'Thank you') or contains(text(),'Gracias') or contains(@id,'finishIncentiveHolder')]"
	validationCode   driver.Descriptor = "//p[contains(@class,'ValCode')]"
	finishHeader     driver.Descriptor = "//p[@class='FinishHeader']"
	finishHeaderAlt  driver.Descriptor = "//h2//p[contains(text(),'Thank you')]"
)

// validationPrefix is stripped from the captured validation code.
const validationPrefix = "Validation Code: "

func ticketField(i int) driver.Descriptor {
	return driver.XPath("//*[@id='CN%d']", i)
}

func labelFor(id string) driver.Descriptor {
	return driver.XPath("//label[@for=%s]", quote(id))
}

func scopedLabelFor(id string) driver.Descriptor {
	return driver.XPath(".//label[@for=%s]", quote(id))
}

func scopedByID(id string) driver.Descriptor {
	return driver.XPath(".//*[@id=%s]", quote(id))
}

// quote renders s as an XPath 1.0 string literal. XPath has no escapes, so a
// value holding both quote kinds is spliced together with concat().
func quote(s string) string {
	switch {
	case !strings.Contains(s, "'"):
		return "'" + s + "'"
	case !strings.Contains(s, `"`):
		return `"` + s + `"`
	}
	parts := strings.Split(s, "'")
	out := make([]string, 0, 2*len(parts))
	for i, p := range parts {
		if i > 0 {
			out = append(out, `"'"`)
		}
		out = append(out, "'"+p+"'")
	}
	return "concat(" + strings.Join(out, ",") + ")"
}
