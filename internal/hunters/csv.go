package hunters

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/agnivade/levenshtein"
	"go.uber.org/zap"

	"github.com/faridlogistics/freightcrm/internal/freight"
	"github.com/faridlogistics/freightcrm/internal/scoring"
)

// ColumnMapping maps logical fields to CSV column indexes. -1 means
// the column was not found.
type ColumnMapping struct {
	MCNumber           int
	DOTNumber          int
	LegalName          int
	DBAName            int
	OwnerName          int
	Phone              int
	Email              int
	City               int
	State              int
	PowerUnits         int
	Drivers            int
	AuthorityGranted   int
	LiabilityInsurance int
	CargoInsurance     int
	CargoCarried       int
	OperationType      int
}

type columnPattern struct {
	field    string
	patterns []*regexp.Regexp
}

// Column header patterns for detection. Order matters: more specific
// patterns come first so MC does not swallow MCS-150 style headers.
var columnPatterns = []columnPattern{
	{"mc_number", compileAll(`^mc[\s_-]?(number|#|num)$`, `^mc$`, `motor[\s_-]?carrier[\s_-]?num`)},
	{"dot_number", compileAll(`dot[\s_-]?(number|#|num)?`, `usdot`, `^dot$`)},
	{"legal_name", compileAll(`legal[\s_-]?name`, `company[\s_-]?name`, `carrier[\s_-]?name`, `^name$`)},
	{"dba_name", compileAll(`dba[\s_-]?(name)?`, `doing[\s_-]?business`, `trade[\s_-]?name`)},
	{"owner_name", compileAll(`owner[\s_-]?(name)?`, `contact[\s_-]?name`, `principal`)},
	{"phone", compileAll(`phone`, `telephone`, `tel[\s_-]?(number)?`)},
	{"email", compileAll(`email[\s_-]?address`, `^email$`, `^e[\s_-]?mail$`)},
	{"city", compileAll(`phy[\s_-]?city`, `physical[\s_-]?city`, `^city$`)},
	{"state", compileAll(`phy[\s_-]?state`, `physical[\s_-]?state`, `^state$`)},
	{"power_units", compileAll(`power[\s_-]?units?`, `nbr[\s_-]?power`, `trucks?`, `tractors?`)},
	{"drivers", compileAll(`driver[\s_-]?total`, `drivers?`, `nbr[\s_-]?drivers?`)},
	{"authority_granted", compileAll(`authority[\s_-]?granted`, `common[\s_-]?auth`, `auth[\s_-]?date`)},
	{"liability_insurance", compileAll(`liab(ility)?[\s_-]?(insurance|ins|coverage)?`, `bipd`)},
	{"cargo_insurance", compileAll(`cargo[\s_-]?(insurance|ins|coverage)?`)},
	{"cargo_carried", compileAll(`cargo[\s_-]?carried`, `commodity`, `freight[\s_-]?type`)},
	{"operation_type", compileAll(`operation[\s_-]?(type|class)`, `carrier[\s_-]?operation`)},
}

// maxHeaderDistance is the edit-distance cutoff for the fallback
// header match, covering typos the regexes miss.
const maxHeaderDistance = 2

func compileAll(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		out[i] = regexp.MustCompile(`(?i)` + p)
	}
	return out
}

// CSVHunter imports carrier leads from registry CSV exports.
type CSVHunter struct {
	sink   LeadSink
	scorer *scoring.Scorer
	logger *zap.Logger
}

// ImportOptions tune one CSV import run.
type ImportOptions struct {
	Limit        int
	RequireEmail bool
}

func NewCSVHunter(sink LeadSink, scorer *scoring.Scorer, logger *zap.Logger) *CSVHunter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CSVHunter{sink: sink, scorer: scorer, logger: logger}
}

func (h *CSVHunter) Source() freight.LeadSource { return freight.SourceCSVImport }

// Import reads a CSV file, converts rows to leads, qualifies them and
// saves the new ones. Rows failing validation are skipped, not fatal.
func (h *CSVHunter) Import(ctx context.Context, path string, opts ImportOptions) (*HuntResult, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening csv: %w", err)
	}
	defer file.Close()

	result := NewHuntResult(h.Source())

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading csv header: %w", err)
	}

	mapping := DetectColumns(header)
	h.logger.Info("detected csv columns",
		zap.Int("mc_column", mapping.MCNumber),
		zap.Int("email_column", mapping.Email),
		zap.Int("phone_column", mapping.Phone),
	)

	if mapping.MCNumber < 0 && mapping.DOTNumber < 0 {
		result.Errors = append(result.Errors, "could not detect MC or DOT number column")
		return result.Complete(), nil
	}
	if mapping.Email < 0 && opts.RequireEmail {
		result.Errors = append(result.Errors, "could not detect email column")
		return result.Complete(), nil
	}

	for {
		if err := ctx.Err(); err != nil {
			return result.Complete(), err
		}
		if opts.Limit > 0 && len(result.Leads) >= opts.Limit {
			break
		}

		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", result.TotalProcessed+2, err))
			continue
		}
		result.TotalProcessed++

		lead := RowToLead(row, mapping, opts.RequireEmail)
		if lead == nil {
			continue
		}

		if h.sink != nil {
			exists, err := h.sink.LeadExistsByMC(lead.Authority.MCNumber)
			if err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("MC %s: %v", lead.Authority.MCNumber, err))
				continue
			}
			if exists {
				result.TotalDuplicates++
				continue
			}
		}

		if h.scorer != nil {
			h.scorer.Qualify(lead)
		}

		if h.sink != nil {
			if err := h.sink.SaveLead(lead); err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("saving MC %s: %v", lead.Authority.MCNumber, err))
				continue
			}
		}

		result.Leads = append(result.Leads, lead)
	}

	result.TotalFound = len(result.Leads)
	return result.Complete(), nil
}

// DetectColumns maps logical fields to header indexes. Regex patterns
// are tried first; unmatched fields fall back to a small edit-distance
// match to cover header typos.
func DetectColumns(header []string) ColumnMapping {
	m := ColumnMapping{
		MCNumber: -1, DOTNumber: -1, LegalName: -1, DBAName: -1, OwnerName: -1,
		Phone: -1, Email: -1, City: -1, State: -1, PowerUnits: -1, Drivers: -1,
		AuthorityGranted: -1, LiabilityInsurance: -1, CargoInsurance: -1,
		CargoCarried: -1, OperationType: -1,
	}

	normalized := make([]string, len(header))
	for i, col := range header {
		normalized[i] = strings.ToLower(strings.TrimSpace(col))
	}

	claimed := make(map[int]bool)
	for _, cp := range columnPatterns {
		idx := -1
	search:
		for _, pattern := range cp.patterns {
			for i, col := range normalized {
				if claimed[i] {
					continue
				}
				if pattern.MatchString(col) {
					idx = i
					break search
				}
			}
		}
		if idx < 0 {
			for i, col := range normalized {
				if claimed[i] {
					continue
				}
				if levenshtein.ComputeDistance(col, cp.field) <= maxHeaderDistance {
					idx = i
					break
				}
			}
		}
		if idx >= 0 {
			claimed[idx] = true
			m.set(cp.field, idx)
		}
	}
	return m
}

func (m *ColumnMapping) set(field string, idx int) {
	switch field {
	case "mc_number":
		m.MCNumber = idx
	case "dot_number":
		m.DOTNumber = idx
	case "legal_name":
		m.LegalName = idx
	case "dba_name":
		m.DBAName = idx
	case "owner_name":
		m.OwnerName = idx
	case "phone":
		m.Phone = idx
	case "email":
		m.Email = idx
	case "city":
		m.City = idx
	case "state":
		m.State = idx
	case "power_units":
		m.PowerUnits = idx
	case "drivers":
		m.Drivers = idx
	case "authority_granted":
		m.AuthorityGranted = idx
	case "liability_insurance":
		m.LiabilityInsurance = idx
	case "cargo_insurance":
		m.CargoInsurance = idx
	case "cargo_carried":
		m.CargoCarried = idx
	case "operation_type":
		m.OperationType = idx
	}
}

// RowToLead converts one CSV row. Returns nil when the row lacks the
// identity or contact data a usable lead needs.
func RowToLead(row []string, m ColumnMapping, requireEmail bool) *freight.Lead {
	mcNumber := CleanDigits(cell(row, m.MCNumber))
	dotNumber := CleanDigits(cell(row, m.DOTNumber))
	legalName := cell(row, m.LegalName)
	email := CleanEmail(cell(row, m.Email))
	phone := CleanPhone(cell(row, m.Phone))

	if mcNumber == "" && dotNumber == "" {
		return nil
	}
	if legalName == "" {
		return nil
	}
	if email == "" && requireEmail {
		return nil
	}
	if phone == "" {
		return nil
	}

	// Substitute one registry number for the other when only one is
	// present.
	if mcNumber == "" {
		mcNumber = dotNumber
	}
	if dotNumber == "" {
		dotNumber = mcNumber
	}

	state := cell(row, m.State)
	if state != "" {
		state = strings.ToUpper(state)
		if len(state) > 2 {
			state = state[:2]
		}
	}

	grantDate := ParseDate(cell(row, m.AuthorityGranted))
	if grantDate.IsZero() {
		grantDate = time.Now().UTC()
	}

	liability := parseAmount(cell(row, m.LiabilityInsurance))
	cargo := parseAmount(cell(row, m.CargoInsurance))
	// Active carriers must hold at least the statutory minimums, so
	// assume them when the export has no coverage columns.
	if liability == 0 {
		liability = freight.MinLiabilityCoverage
	}
	if cargo == 0 {
		cargo = freight.MinCargoCoverage
	}

	lead := freight.NewLead(legalName, freight.SourceCSVImport)
	lead.DBAName = cell(row, m.DBAName)
	lead.OwnerName = cell(row, m.OwnerName)
	lead.Contact = freight.Contact{
		PhonePrimary: phone,
		Email:        email,
		Timezone:     stateTimezone(state),
	}
	lead.Authority = freight.Authority{
		MCNumber:    mcNumber,
		DOTNumber:   dotNumber,
		Status:      "ACTIVE",
		GrantedDate: grantDate,
	}
	lead.Insurance = freight.Insurance{
		LiabilityCoverage: liability,
		CargoCoverage:     cargo,
	}
	lead.Fleet = freight.Fleet{
		TruckCount:     cellInt(row, m.PowerUnits, 1),
		DriverCount:    cellInt(row, m.Drivers, 1),
		EquipmentTypes: InferEquipment(cell(row, m.CargoCarried), cell(row, m.OperationType)),
		HomeBaseCity:   cell(row, m.City),
		HomeBaseState:  state,
	}
	if state != "" {
		lead.Fleet.OperatingStates = []string{state}
	}
	return lead
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func cellInt(row []string, idx, def int) int {
	val := cell(row, idx)
	if val == "" {
		return def
	}
	// Exports sometimes carry counts as floats like "1.0".
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return def
	}
	return int(f)
}

var (
	nonDigits  = regexp.MustCompile(`\D`)
	emailRe    = regexp.MustCompile(`^[\w.\-+]+@[\w.\-]+\.\w{2,}$`)
	amountRe   = regexp.MustCompile(`[\d,]+`)
	dateLayout = []string{"2006-01-02", "01/02/2006", "2-Jan-2006", "20060102", "01-02-2006"}
)

// CleanPhone normalizes a phone number to +1 E.164 form. Returns
// empty for anything with fewer than ten digits.
func CleanPhone(phone string) string {
	digits := nonDigits.ReplaceAllString(phone, "")
	switch {
	case len(digits) == 10:
		return "+1" + digits
	case len(digits) == 11 && strings.HasPrefix(digits, "1"):
		return "+" + digits
	case len(digits) > 10:
		return "+1" + digits[len(digits)-10:]
	}
	return ""
}

// CleanEmail lowercases and validates an email address.
func CleanEmail(email string) string {
	email = strings.ToLower(strings.TrimSpace(email))
	if emailRe.MatchString(email) {
		return email
	}
	return ""
}

// CleanDigits strips everything but digits from an MC or DOT number.
func CleanDigits(value string) string {
	return nonDigits.ReplaceAllString(value, "")
}

// ParseDate tries the date formats seen in registry exports. Returns
// the zero time when none fit.
func ParseDate(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}
	for _, layout := range dateLayout {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}

func parseAmount(value string) int {
	match := amountRe.FindString(value)
	if match == "" {
		return 0
	}
	n, err := strconv.Atoi(strings.ReplaceAll(match, ",", ""))
	if err != nil {
		return 0
	}
	return n
}

// InferEquipment guesses trailer types from cargo and operation
// descriptions. General freight defaults to dry van.
func InferEquipment(cargo, operation string) []freight.EquipmentType {
	combined := strings.ToLower(cargo + " " + operation)
	var equipment []freight.EquipmentType

	if containsAny(combined, "refrigerated", "reefer", "frozen", "fresh", "produce", "meat") {
		equipment = append(equipment, freight.EquipmentReefer)
	}
	if containsAny(combined, "flatbed", "flat bed", "machinery", "steel", "lumber", "building") {
		equipment = append(equipment, freight.EquipmentFlatbed)
	}
	if containsAny(combined, "tanker", "tank", "liquid", "petroleum", "fuel", "chemical") {
		equipment = append(equipment, freight.EquipmentTanker)
	}
	if containsAny(combined, "auto", "car hauler", "vehicle") {
		equipment = append(equipment, freight.EquipmentCarHauler)
	}
	if len(equipment) == 0 || strings.Contains(combined, "general") || strings.Contains(combined, "freight") {
		equipment = append(equipment, freight.EquipmentDryVan)
	}
	return equipment
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

var stateTimezones = map[string]string{
	"CT": "America/New_York", "DE": "America/New_York", "FL": "America/New_York",
	"GA": "America/New_York", "IN": "America/New_York", "KY": "America/New_York",
	"ME": "America/New_York", "MD": "America/New_York", "MA": "America/New_York",
	"MI": "America/New_York", "NH": "America/New_York", "NJ": "America/New_York",
	"NY": "America/New_York", "NC": "America/New_York", "OH": "America/New_York",
	"PA": "America/New_York", "RI": "America/New_York", "SC": "America/New_York",
	"TN": "America/New_York", "VT": "America/New_York", "VA": "America/New_York",
	"WV": "America/New_York",
	"AZ": "America/Denver", "CO": "America/Denver", "ID": "America/Denver",
	"MT": "America/Denver", "NM": "America/Denver", "UT": "America/Denver",
	"WY": "America/Denver",
	"CA": "America/Los_Angeles", "NV": "America/Los_Angeles",
	"OR": "America/Los_Angeles", "WA": "America/Los_Angeles",
}

func stateTimezone(state string) string {
	if tz, ok := stateTimezones[state]; ok {
		return tz
	}
	return "America/Chicago"
}
