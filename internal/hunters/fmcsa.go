package hunters

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"

	"github.com/faridlogistics/freightcrm/internal/freight"
	"github.com/faridlogistics/freightcrm/internal/utils"
)

const (
	fmcsaAPIURL = "https://mobile.fmcsa.dot.gov/qc/services"
	userAgent   = "freightcrm/1.0"

	// defaultRateLimitDelay spaces out registry requests.
	defaultRateLimitDelay = 2 * time.Second
)

// FMCSAClient queries the federal carrier registry.
type FMCSAClient struct {
	ctx        context.Context
	webKey     string
	logger     *zap.Logger
	HTTPClient *http.Client
	APIURL     string
	UserAgent  string
	RateDelay  time.Duration
}

func NewFMCSAClient(ctx context.Context, logger *zap.Logger, webKey string) *FMCSAClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FMCSAClient{
		ctx:    ctx,
		webKey: webKey,
		APIURL: fmcsaAPIURL,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger:    logger,
		UserAgent: userAgent,
		RateDelay: defaultRateLimitDelay,
	}
}

// CarrierSnapshot is the registry record for one carrier.
type CarrierSnapshot struct {
	LegalName        string `json:"legalName"`
	DBAName          string `json:"dbaName"`
	DOTNumber        int    `json:"dotNumber"`
	DocketNumber     string `json:"docketNumber"`
	PhyCity          string `json:"phyCity"`
	PhyState         string `json:"phyState"`
	Phone            string `json:"phone"`
	TotalPowerUnits  int    `json:"totalPowerUnits"`
	TotalDrivers     int    `json:"totalDrivers"`
	AllowedToOperate string `json:"allowedToOperate"`
	BIPDInsuranceOnFile  string `json:"bipdInsuranceOnFile"`
	CargoInsuranceOnFile string `json:"cargoInsuranceOnFile"`
	CarrierOperation     string `json:"carrierOperation"`
	CargoCarried         string `json:"cargoCarried"`
	AddedDate            string `json:"addedDate"`
}

// LookupCarrier fetches one carrier by MC (docket) number.
func (c *FMCSAClient) LookupCarrier(mcNumber string) (*CarrierSnapshot, error) {
	var payload struct {
		Content []map[string]any `json:"content"`
	}
	endpoint := fmt.Sprintf("%s/carriers/docket-number/%s", c.APIURL, url.PathEscape(mcNumber))
	if err := c.getJSON(endpoint, nil, &payload); err != nil {
		return nil, fmt.Errorf("looking up carrier MC %s: %w", mcNumber, err)
	}
	if len(payload.Content) == 0 {
		return nil, fmt.Errorf("carrier MC %s not found", mcNumber)
	}

	raw, ok := payload.Content[0]["carrier"]
	if !ok {
		raw = payload.Content[0]
	}

	var snapshot CarrierSnapshot
	cfg := &mapstructure.DecoderConfig{
		Result:           &snapshot,
		TagName:          "json",
		WeaklyTypedInput: true,
	}
	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("decoding carrier MC %s: %w", mcNumber, err)
	}
	return &snapshot, nil
}

// VerifyAuthority reports whether a carrier is allowed to operate.
func (c *FMCSAClient) VerifyAuthority(mcNumber string) (bool, error) {
	snapshot, err := c.LookupCarrier(mcNumber)
	if err != nil {
		return false, err
	}
	return snapshot.AllowedToOperate == "Y", nil
}

// SnapshotToLead converts a registry record into a lead. Returns nil
// for carriers without a usable phone number.
func SnapshotToLead(s *CarrierSnapshot) *freight.Lead {
	phone := CleanPhone(s.Phone)
	if phone == "" {
		return nil
	}

	lead := freight.NewLead(s.LegalName, freight.SourceRegistry)
	lead.DBAName = s.DBAName
	lead.Contact = freight.Contact{
		PhonePrimary: phone,
		Timezone:     stateTimezone(s.PhyState),
	}
	lead.Authority = freight.Authority{
		MCNumber:    CleanDigits(s.DocketNumber),
		DOTNumber:   fmt.Sprintf("%d", s.DOTNumber),
		Status:      authorityStatus(s.AllowedToOperate),
		GrantedDate: ParseDate(s.AddedDate),
	}
	lead.Insurance = freight.Insurance{
		LiabilityCoverage: insuranceOnFile(s.BIPDInsuranceOnFile, freight.MinLiabilityCoverage),
		CargoCoverage:     insuranceOnFile(s.CargoInsuranceOnFile, freight.MinCargoCoverage),
	}
	lead.Fleet = freight.Fleet{
		TruckCount:     max(s.TotalPowerUnits, 1),
		DriverCount:    max(s.TotalDrivers, 1),
		EquipmentTypes: InferEquipment(s.CargoCarried, s.CarrierOperation),
		HomeBaseCity:   s.PhyCity,
		HomeBaseState:  s.PhyState,
	}
	if s.PhyState != "" {
		lead.Fleet.OperatingStates = []string{s.PhyState}
	}
	return lead
}

// HuntByMC looks up each MC number with rate limiting between
// requests, saving new leads through the sink.
func (c *FMCSAClient) HuntByMC(ctx context.Context, sink LeadSink, mcNumbers []string) (*HuntResult, error) {
	result := NewHuntResult(freight.SourceRegistry)

	for i, mc := range mcNumbers {
		if i > 0 {
			if err := utils.WaitFor(ctx, c.RateDelay); err != nil {
				return result.Complete(), err
			}
		}
		result.TotalProcessed++

		snapshot, err := c.LookupCarrier(mc)
		if err != nil {
			result.Errors = append(result.Errors, err.Error())
			continue
		}

		lead := SnapshotToLead(snapshot)
		if lead == nil {
			continue
		}

		if sink != nil {
			exists, err := sink.LeadExistsByMC(lead.Authority.MCNumber)
			if err != nil {
				result.Errors = append(result.Errors, err.Error())
				continue
			}
			if exists {
				result.TotalDuplicates++
				continue
			}
			if err := sink.SaveLead(lead); err != nil {
				result.Errors = append(result.Errors, err.Error())
				continue
			}
		}

		result.Leads = append(result.Leads, lead)
		c.logger.Debug("registry lead collected",
			zap.String("mc_number", lead.Authority.MCNumber),
			zap.String("company", lead.CompanyName),
		)
	}

	result.TotalFound = len(result.Leads)
	return result.Complete(), nil
}

func (c *FMCSAClient) getJSON(endpoint string, q url.Values, target any) error {
	req, err := http.NewRequestWithContext(c.ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	if q == nil {
		q = url.Values{}
	}
	if c.webKey != "" {
		q.Set("webKey", c.webKey)
	}
	req.URL.RawQuery = q.Encode()
	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("make request", zap.String("url", req.URL.Redacted()))
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("bad status: %s", resp.Status)
	}
	if target == nil {
		return nil
	}
	return json.Unmarshal(data, target)
}

func authorityStatus(allowed string) string {
	if allowed == "Y" {
		return "ACTIVE"
	}
	return "INACTIVE"
}

func insuranceOnFile(onFile string, minimum int) int {
	if onFile == "" || onFile == "0" {
		return 0
	}
	return minimum
}
