package domain

// Field limits enforced by the backend.
const (
	MaxClientNameLength      = 100
	MaxClientIdentityLength  = 20
	MaxDriverNameLength      = 20
	MaxDriverPlateLength     = 20
	DefaultPageSize          = 10
	DateLayout               = "2006-01-02"
	RecentTransportLogsCount = 10
)

// Client is a registered customer.
type Client struct {
	ID         int64  `json:"id,omitempty"`
	Name       string `json:"name"`
	IdentityID string `json:"identityId"`
}

// String returns the client name.
func (c Client) String() string {
	return c.Name
}

// Driver is a truck driver available for dispatch.
type Driver struct {
	ID          int64  `json:"id,omitempty"`
	Name        string `json:"name"`
	PlateNumber string `json:"plateNumber"`
}

// String returns the driver name and plate.
func (d Driver) String() string {
	if d.PlateNumber == "" {
		return d.Name
	}
	return d.Name + " (" + d.PlateNumber + ")"
}

// TransportLog is a single recorded trip as returned by the API.
type TransportLog struct {
	ID                int64   `json:"id"`
	Client            *Client `json:"client,omitempty"`
	Driver            *Driver `json:"driver,omitempty"`
	LoadDate          string  `json:"loadDate"`
	LoadLocation      string  `json:"loadLocation"`
	UnloadDate        string  `json:"unloadDate"`
	UnloadLocation    string  `json:"unloadLocation"`
	DestinationName   string  `json:"destinationName" table:"wide"`
	DeliveryNote      string  `json:"deliveryNote,omitempty" table:"wide"`
	Advance           float64 `json:"advance" table:"wide"`
	FuelQuantity      float64 `json:"fuelQuantity" table:"wide"`
	FuelPricePerLiter float64 `json:"fuelPricePerLiter" table:"wide"`
	VariableCharge    float64 `json:"variableCharge" table:"wide"`
	ChargePrice       float64 `json:"chargePrice" table:"wide"`
	ClientTariff      float64 `json:"clientTariff" table:"wide"`
	TripPrice         float64 `json:"tripPrice"`
	Operator          string  `json:"operator" table:"wide"`
	Commercial        string  `json:"commercial" table:"wide"`
}

// Route returns the "load-unload" key used to count distinct routes.
func (l TransportLog) Route() string {
	return l.LoadLocation + "-" + l.UnloadLocation
}

// TransportLogInput is the create/update form for a transport log.
// ID is zero on create.
type TransportLogInput struct {
	ID                int64   `json:"id,omitempty"`
	ClientID          int64   `json:"clientId"`
	DriverID          int64   `json:"driverId"`
	LoadDate          string  `json:"loadDate"`
	LoadLocation      string  `json:"loadLocation"`
	UnloadDate        string  `json:"unloadDate"`
	UnloadLocation    string  `json:"unloadLocation"`
	DestinationName   string  `json:"destinationName"`
	DeliveryNote      string  `json:"deliveryNote,omitempty"`
	Advance           float64 `json:"advance"`
	FuelQuantity      float64 `json:"fuelQuantity"`
	FuelPricePerLiter float64 `json:"fuelPricePerLiter"`
	VariableCharge    float64 `json:"variableCharge"`
	ChargePrice       float64 `json:"chargePrice"`
	ClientTariff      float64 `json:"clientTariff"`
	TripPrice         float64 `json:"tripPrice"`
	Operator          string  `json:"operator"`
	Commercial        string  `json:"commercial"`
}

// Envelope is the response wrapper used by every endpoint.
type Envelope[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    T      `json:"data"`
}

// Page is one page of a paginated listing.
type Page[T any] struct {
	Data          []T   `json:"data"`
	Page          int   `json:"page"`
	Size          int   `json:"size"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
	Last          bool  `json:"last"`
}

// HasNext reports whether another page follows this one.
func (p Page[T]) HasNext() bool {
	return !p.Last && p.Page+1 < p.TotalPages
}

// ErrorPayload is the structured error body returned by the backend.
type ErrorPayload struct {
	Status    int    `json:"status"`
	Error     string `json:"error"`
	Message   string `json:"message"`
	Path      string `json:"path"`
	Timestamp string `json:"timestamp"`
}

// LoginData is the payload of a successful login envelope.
type LoginData struct {
	Token     string `json:"token"`
	Username  string `json:"username"`
	ExpiresAt string `json:"expiresAt,omitempty"`
}
