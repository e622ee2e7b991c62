package parser

import (
	"regexp"
	"strconv"
	"strings"

	"pharmacrawl/internal/types"
)

// Label-style patterns, in priority order. The first pattern that
// matches wins for its field; the capture runs to end of line.
var (
	skuPatterns = compileAll(
		`(?i)SKU[:\s]*([A-Za-z0-9-]+)`,
		`(?i)Product Code[:\s]*([A-Za-z0-9-]+)`,
		`(?i)Item Code[:\s]*([A-Za-z0-9-]+)`,
	)

	manufacturerPatterns = compileAll(
		`(?i)Manufacturer[:\s]*([^\n]+)`,
		`(?i)Brand[:\s]*([^\n]+)`,
		`(?i)Company[:\s]*([^\n]+)`,
		`(?i)Made by[:\s]*([^\n]+)`,
	)

	ingredientPatterns = compileAll(
		`(?i)Ingredients[:\s]*([^\n]+)`,
		`(?i)Composition[:\s]*([^\n]+)`,
		`(?i)Active Ingredients[:\s]*([^\n]+)`,
		`(?i)Contains[:\s]*([^\n]+)`,
	)

	dosagePatterns = compileAll(
		`(?i)Dosage[:\s]*([^\n]+)`,
		`(?i)Dose[:\s]*([^\n]+)`,
		`(?i)How to use[:\s]*([^\n]+)`,
		`(?i)Administration[:\s]*([^\n]+)`,
	)

	formPatterns = compileAll(
		`(?i)Form[:\s]*([^\n]+)`,
		`(?i)Type[:\s]*([^\n]+)`,
		`(?i)Formulation[:\s]*([^\n]+)`,
	)

	deliveryPatterns = compileAll(
		`(?i)delivery[:\s]*([^\n]+)`,
		`(?i)shipping[:\s]*([^\n]+)`,
		`(?i)arrives[:\s]*([^\n]+)`,
	)

	stockQuantityPatterns = compileAll(
		`(?i)(\d+)\s*in stock`,
		`(?i)stock:\s*(\d+)`,
		`(?i)available:\s*(\d+)`,
		`(?i)quantity:\s*(\d+)`,
	)

	reviewCountPatterns = compileAll(
		`(?i)(\d+)\s*reviews?`,
		`(?i)(\d+)\s*ratings?`,
		`(?i)reviewed by\s*(\d+)`,
	)
)

// Keyword sets for boolean flags. Stock defaults to in-stock; any
// unavailability keyword flips it. Prescription defaults to false.
var (
	outOfStockKeywords = []string{
		"out of stock", "not available", "unavailable", "sold out", "stock finished",
	}
	prescriptionKeywords = []string{
		"prescription required", "prescription needed", "rx required",
		"doctor's prescription", "prescribed medicine",
	}
)

// formKeywords maps each medicine form to the tokens that imply it.
// Scanned in a fixed order so inference is deterministic.
var formKeywords = []struct {
	form     types.MedicineForm
	keywords []string
}{
	{types.FormTablet, []string{"tablet", "tab", "pills"}},
	{types.FormCapsule, []string{"capsule", "cap"}},
	{types.FormSyrup, []string{"syrup", "liquid", "suspension"}},
	{types.FormInjection, []string{"injection", "inj", "vial"}},
	{types.FormCream, []string{"cream", "ointment", "gel"}},
	{types.FormDrops, []string{"drops", "eye drops", "ear drops"}},
}

func compileAll(patterns ...string) []*regexp.Regexp {
	res := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		res[i] = regexp.MustCompile(p)
	}
	return res
}

// FirstLabelMatch runs patterns in order over text and returns the
// trimmed first capture of the first pattern that matches.
func FirstLabelMatch(text string, patterns []*regexp.Regexp) string {
	for _, re := range patterns {
		if m := re.FindStringSubmatch(text); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}

// FirstIntMatch is FirstLabelMatch for numeric captures.
func FirstIntMatch(text string, patterns []*regexp.Regexp) (int, bool) {
	s := FirstLabelMatch(text, patterns)
	if s == "" {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

// SKU extracts a product code from page text.
func SKU(text string) string { return FirstLabelMatch(text, skuPatterns) }

// Manufacturer extracts the manufacturer or brand line from page text.
func Manufacturer(text string) string { return FirstLabelMatch(text, manufacturerPatterns) }

// Ingredients extracts the composition line from page text.
func Ingredients(text string) string { return FirstLabelMatch(text, ingredientPatterns) }

// Dosage extracts the dosage line from page text.
func Dosage(text string) string { return FirstLabelMatch(text, dosagePatterns) }

// DeliveryInfo extracts the delivery/shipping line from page text.
func DeliveryInfo(text string) string { return FirstLabelMatch(text, deliveryPatterns) }

// StockQuantity extracts a numeric stock quantity, if stated.
func StockQuantity(text string) (int, bool) { return FirstIntMatch(text, stockQuantityPatterns) }

// ReviewCount extracts the review count, defaulting to zero.
func ReviewCount(text string) int {
	n, ok := FirstIntMatch(text, reviewCountPatterns)
	if !ok {
		return 0
	}
	return n
}

// InStock reports stock status from text. True unless an
// unavailability keyword is present.
func InStock(text string) bool {
	return !containsAny(strings.ToLower(text), outOfStockKeywords)
}

// PrescriptionRequired reports whether any prescription keyword
// appears in text.
func PrescriptionRequired(text string) bool {
	return containsAny(strings.ToLower(text), prescriptionKeywords)
}

// InferForm determines the medicine form. An explicit "Form:" label
// wins; otherwise a keyword table is scanned over name+description.
func InferForm(name, description, pageText string) types.MedicineForm {
	if labeled := FirstLabelMatch(pageText, formPatterns); labeled != "" {
		if form := matchForm(labeled); form != types.FormUnknown {
			return form
		}
	}
	return matchForm(name + " " + description)
}

func matchForm(text string) types.MedicineForm {
	lower := strings.ToLower(text)
	for _, fk := range formKeywords {
		for _, kw := range fk.keywords {
			if strings.Contains(lower, kw) {
				return fk.form
			}
		}
	}
	return types.FormUnknown
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
