// Package ingest turns arbitrary spreadsheet exports into normalized unit rows
// and aggregates them into unit summaries.
package ingest

import "regexp"

// Field is a canonical unit attribute that spreadsheet headers map onto.
type Field string

const (
	FieldTower       Field = "tower"
	FieldUnitNumber  Field = "unit_number"
	FieldUnitCode    Field = "unit_code"
	FieldFloor       Field = "floor"
	FieldUnitType    Field = "unit_type"
	FieldBedrooms    Field = "bedrooms"
	FieldAreaBalcony Field = "area_balcony"
	FieldAreaSuite   Field = "area_suite"
	FieldAreaTotal   Field = "area_total"
	FieldPrice       Field = "price"
	FieldStatus      Field = "status"
	FieldUnitView    Field = "unit_view"
)

// HeaderRule pairs a header pattern with the field it maps to. A header that
// also matches Exclude is not a direct match for the rule.
type HeaderRule struct {
	Pattern *regexp.Regexp
	Exclude *regexp.Regexp
	Field   Field
}

// Matches reports whether header matches the rule outright.
func (r HeaderRule) Matches(header string) bool {
	if !r.Pattern.MatchString(header) {
		return false
	}
	return r.Exclude == nil || !r.Exclude.MatchString(header)
}

// areaWords marks headers that describe a measurement rather than a position,
// such as "Floor Area".
var areaWords = regexp.MustCompile(`(?i)\b(area|size|sq\.?\s*ft|sqft|sqm|space|plate)\b`)

// DefaultRules is the ordered header catalog. Earlier rules win ties, so the
// more specific patterns (unit code, balcony area, unit type) come first.
var DefaultRules = []HeaderRule{
	{Pattern: regexp.MustCompile(`(?i)\b(tower|block|building|wing|phase)\b`), Field: FieldTower},
	{Pattern: regexp.MustCompile(`(?i)\bunit\s*(code|id)\b|\bsku\b`), Field: FieldUnitCode},
	{Pattern: regexp.MustCompile(`(?i)\b(unit|flat|apt|apartment|shop|villa|plot)\s*(no|num|number|#)?\.?\s*$|\b(unit|flat|apt|apartment)\s*(?:(?:no|num|number)\b|#)`), Field: FieldUnitNumber},
	{Pattern: regexp.MustCompile(`(?i)\b(floor|level|storey|story|flr)\b`), Exclude: areaWords, Field: FieldFloor},
	{Pattern: regexp.MustCompile(`(?i)\b(unit\s*type|typology|category|layout)\b`), Field: FieldUnitType},
	{Pattern: regexp.MustCompile(`(?i)\b(bed|beds|bedroom|bedrooms|bhk|br|type|config|configuration)\b`), Field: FieldBedrooms},
	{Pattern: regexp.MustCompile(`(?i)\b(price|cost|value|amount|rate|aed|inr|usd)\b`), Field: FieldPrice},
	{Pattern: regexp.MustCompile(`(?i)balcony|terrace|deck`), Field: FieldAreaBalcony},
	{Pattern: regexp.MustCompile(`(?i)\b(suite|internal|carpet)\b`), Field: FieldAreaSuite},
	{Pattern: regexp.MustCompile(`(?i)\b(area|size|sq\.?\s*ft|sqft|sqm|saleable|built\s*up|super)\b`), Field: FieldAreaTotal},
	{Pattern: regexp.MustCompile(`(?i)\b(status|availability|available|sold)\b`), Field: FieldStatus},
	{Pattern: regexp.MustCompile(`(?i)\b(view|facing|orientation|aspect)\b`), Field: FieldUnitView},
}

// catalogFields lists every field the default catalog can produce, in order.
func catalogFields() []Field {
	fields := make([]Field, 0, len(DefaultRules))
	seen := make(map[Field]bool, len(DefaultRules))
	for _, rule := range DefaultRules {
		if !seen[rule.Field] {
			seen[rule.Field] = true
			fields = append(fields, rule.Field)
		}
	}
	return fields
}
