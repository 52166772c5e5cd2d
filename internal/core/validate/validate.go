package validate

import (
	"embed"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xeipuuv/gojsonschema"

	"github.com/yndnr/delivtrack-go/internal/core/domain"
)

//go:embed schemas/*.json
var schemaFS embed.FS

type fieldKind int

const (
	kindText fieldKind = iota
	kindNumber
	kindDate
	kindRef
)

type field struct {
	key   string
	label string
	kind  fieldKind
	max   int
}

var (
	clientFields = []field{
		{"id", "ID", kindRef, 0},
		{"name", "Name", kindText, domain.MaxClientNameLength},
		{"identityId", "Identity ID", kindText, domain.MaxClientIdentityLength},
	}
	driverFields = []field{
		{"id", "ID", kindRef, 0},
		{"name", "Name", kindText, domain.MaxDriverNameLength},
		{"plateNumber", "Plate Number", kindText, domain.MaxDriverPlateLength},
	}
	transportLogFields = []field{
		{"id", "ID", kindRef, 0},
		{"clientId", "Client", kindRef, 0},
		{"driverId", "Driver", kindRef, 0},
		{"loadDate", "Load date", kindDate, 0},
		{"loadLocation", "Load location", kindText, 0},
		{"unloadDate", "Unload date", kindDate, 0},
		{"unloadLocation", "Unload location", kindText, 0},
		{"destinationName", "Destination name", kindText, 0},
		{"deliveryNote", "Delivery note", kindText, 0},
		{"operator", "Operator", kindText, 0},
		{"commercial", "Commercial", kindText, 0},
		{"advance", "advance", kindNumber, 0},
		{"fuelQuantity", "fuelQuantity", kindNumber, 0},
		{"fuelPricePerLiter", "fuelPricePerLiter", kindNumber, 0},
		{"variableCharge", "variableCharge", kindNumber, 0},
		{"chargePrice", "chargePrice", kindNumber, 0},
		{"clientTariff", "clientTariff", kindNumber, 0},
		{"tripPrice", "tripPrice", kindNumber, 0},
	}
)

// FieldError is the message for one form field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Errors lists field errors in form order, at most one per field.
type Errors []FieldError

// Error joins the messages.
func (e Errors) Error() string {
	msgs := make([]string, len(e))
	for i, fe := range e {
		msgs[i] = fe.Message
	}
	return strings.Join(msgs, "; ")
}

// Message returns the message for field or "".
func (e Errors) Message(field string) string {
	for _, fe := range e {
		if fe.Field == field {
			return fe.Message
		}
	}
	return ""
}

// ClientForm is the raw client form input.
type ClientForm struct {
	ID         string
	Name       string
	IdentityID string
}

// DriverForm is the raw driver form input.
type DriverForm struct {
	ID          string
	Name        string
	PlateNumber string
}

// TransportLogForm is the raw transport log form input. Numeric fields
// hold the text as typed.
type TransportLogForm struct {
	ID                string
	ClientID          string
	DriverID          string
	LoadDate          string
	LoadLocation      string
	UnloadDate        string
	UnloadLocation    string
	DestinationName   string
	DeliveryNote      string
	Operator          string
	Commercial        string
	Advance           string
	FuelQuantity      string
	FuelPricePerLiter string
	VariableCharge    string
	ChargePrice       string
	ClientTariff      string
	TripPrice         string
}

// Validator checks form input against the embedded JSON schemas.
type Validator struct {
	client       *gojsonschema.Schema
	driver       *gojsonschema.Schema
	transportLog *gojsonschema.Schema
}

// New compiles the embedded schemas.
func New() (*Validator, error) {
	v := &Validator{}
	for name, dst := range map[string]**gojsonschema.Schema{
		"client.json":        &v.client,
		"driver.json":        &v.driver,
		"transport_log.json": &v.transportLog,
	} {
		raw, err := schemaFS.ReadFile("schemas/" + name)
		if err != nil {
			return nil, fmt.Errorf("read schema %s: %w", name, err)
		}
		s, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
		if err != nil {
			return nil, fmt.Errorf("compile schema %s: %w", name, err)
		}
		*dst = s
	}
	return v, nil
}

// Client validates f and returns the trimmed payload.
func (v *Validator) Client(f ClientForm) (domain.Client, error) {
	doc := map[string]interface{}{
		"id":         strings.TrimSpace(f.ID),
		"name":       strings.TrimSpace(f.Name),
		"identityId": strings.TrimSpace(f.IdentityID),
	}
	if err := v.check(v.client, clientFields, doc); err != nil {
		return domain.Client{}, err
	}
	return domain.Client{
		ID:         parseID(doc["id"]),
		Name:       doc["name"].(string),
		IdentityID: doc["identityId"].(string),
	}, nil
}

// Driver validates f and returns the trimmed payload.
func (v *Validator) Driver(f DriverForm) (domain.Driver, error) {
	doc := map[string]interface{}{
		"id":          strings.TrimSpace(f.ID),
		"name":        strings.TrimSpace(f.Name),
		"plateNumber": strings.TrimSpace(f.PlateNumber),
	}
	if err := v.check(v.driver, driverFields, doc); err != nil {
		return domain.Driver{}, err
	}
	return domain.Driver{
		ID:          parseID(doc["id"]),
		Name:        doc["name"].(string),
		PlateNumber: doc["plateNumber"].(string),
	}, nil
}

// TransportLog validates f and converts it to the write model.
func (v *Validator) TransportLog(f TransportLogForm) (domain.TransportLogInput, error) {
	doc := map[string]interface{}{
		"id":                strings.TrimSpace(f.ID),
		"clientId":          strings.TrimSpace(f.ClientID),
		"driverId":          strings.TrimSpace(f.DriverID),
		"loadDate":          strings.TrimSpace(f.LoadDate),
		"loadLocation":      strings.TrimSpace(f.LoadLocation),
		"unloadDate":        strings.TrimSpace(f.UnloadDate),
		"unloadLocation":    strings.TrimSpace(f.UnloadLocation),
		"destinationName":   strings.TrimSpace(f.DestinationName),
		"deliveryNote":      strings.TrimSpace(f.DeliveryNote),
		"operator":          strings.TrimSpace(f.Operator),
		"commercial":        strings.TrimSpace(f.Commercial),
		"advance":           strings.TrimSpace(f.Advance),
		"fuelQuantity":      strings.TrimSpace(f.FuelQuantity),
		"fuelPricePerLiter": strings.TrimSpace(f.FuelPricePerLiter),
		"variableCharge":    strings.TrimSpace(f.VariableCharge),
		"chargePrice":       strings.TrimSpace(f.ChargePrice),
		"clientTariff":      strings.TrimSpace(f.ClientTariff),
		"tripPrice":         strings.TrimSpace(f.TripPrice),
	}
	if err := v.check(v.transportLog, transportLogFields, doc); err != nil {
		return domain.TransportLogInput{}, err
	}

	str := func(k string) string { return doc[k].(string) }
	num := func(k string) float64 {
		n, _ := strconv.ParseFloat(str(k), 64)
		return n
	}
	return domain.TransportLogInput{
		ID:                parseID(doc["id"]),
		ClientID:          parseID(doc["clientId"]),
		DriverID:          parseID(doc["driverId"]),
		LoadDate:          str("loadDate"),
		LoadLocation:      str("loadLocation"),
		UnloadDate:        str("unloadDate"),
		UnloadLocation:    str("unloadLocation"),
		DestinationName:   str("destinationName"),
		DeliveryNote:      str("deliveryNote"),
		Operator:          str("operator"),
		Commercial:        str("commercial"),
		Advance:           num("advance"),
		FuelQuantity:      num("fuelQuantity"),
		FuelPricePerLiter: num("fuelPricePerLiter"),
		VariableCharge:    num("variableCharge"),
		ChargePrice:       num("chargePrice"),
		ClientTariff:      num("clientTariff"),
		TripPrice:         num("tripPrice"),
	}, nil
}

// check validates doc and returns ErrValidation wrapping Errors.
func (v *Validator) check(schema *gojsonschema.Schema, fields []field, doc map[string]interface{}) error {
	result, err := schema.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return domain.ErrValidation.WithCause(err)
	}

	byKey := make(map[string]field, len(fields))
	for _, f := range fields {
		byKey[f.key] = f
	}

	found := make(map[string]string)
	for _, re := range result.Errors() {
		key := re.Field()
		if re.Type() == "required" {
			if p, ok := re.Details()["property"].(string); ok {
				key = p
			}
		}
		f, ok := byKey[key]
		if !ok {
			continue
		}
		msg := message(f, re)
		// An emptiness message wins over any other for the same field.
		if _, seen := found[key]; !seen || isMissing(re.Type()) {
			found[key] = msg
		}
	}

	for _, f := range fields {
		if f.kind != kindDate {
			continue
		}
		if _, bad := found[f.key]; bad {
			continue
		}
		if _, err := time.Parse(domain.DateLayout, doc[f.key].(string)); err != nil {
			found[f.key] = f.label + " must be a date (YYYY-MM-DD)"
		}
	}

	if len(found) == 0 {
		return nil
	}
	errs := make(Errors, 0, len(found))
	for _, f := range fields {
		if msg, ok := found[f.key]; ok {
			errs = append(errs, FieldError{Field: f.key, Message: msg})
		}
	}
	return domain.ErrValidation.WithDetails(errs.Error()).WithCause(errs)
}

func isMissing(errType string) bool {
	return errType == "required" || errType == "string_gte"
}

func message(f field, re gojsonschema.ResultError) string {
	if f.kind == kindNumber {
		return f.label + " must be a valid number"
	}
	switch {
	case isMissing(re.Type()):
		return f.label + " is required"
	case re.Type() == "string_lte":
		return fmt.Sprintf("%s must be less than %d characters", f.label, f.max)
	case f.kind == kindDate:
		return f.label + " must be a date (YYYY-MM-DD)"
	case f.kind == kindRef:
		return f.label + " must be a positive id"
	default:
		return f.label + " is invalid"
	}
}

func parseID(v interface{}) int64 {
	s, _ := v.(string)
	id, _ := strconv.ParseInt(s, 10, 64)
	return id
}
