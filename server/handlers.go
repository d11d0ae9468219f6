package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/sig-0/remesas/quote"
	"github.com/sig-0/remesas/storage"
	"github.com/sig-0/remesas/storage/types"
)

const (
	modeForward = "forward"
	modeInverse = "inverse"
	modeSheet   = "sheet"

	maxSettingsBody = 1 << 16
)

var (
	errUnableToLoadSettings = errors.New("unable to load settings")
	errUnableToSaveSettings = errors.New("unable to save settings")
	errUnableToResolveUser  = errors.New("unable to resolve session")

	errUnauthorized   = errors.New("unauthorized")
	errRateLimited    = errors.New("too many requests")
	errInvalidMode    = errors.New("invalid mode (forward, inverse or sheet)")
	errInvalidTarget  = errors.New("invalid last touched target")
	errInvalidPayload = errors.New("invalid settings payload")
	errAmbiguousFee   = errors.New("fee_pct and fee_fixed are mutually exclusive")
	errInvalidFeePct  = errors.New("invalid fee_pct (must be within [0, 100])")
	errNoTargetAmount = errors.New("no target amount given")
)

// inverseParams maps the inverse query parameters to their targets
var inverseParams = []struct {
	name   string
	target quote.Target
}{
	{"ves", quote.TargetVES},
	{"usd_bcv", quote.TargetUSDOfficial},
	{"usd_parallel", quote.TargetUSDParallel},
	{"usd_eur", quote.TargetUSDEUR},
	{"eur", quote.TargetEUR},
}

// Rates serves the reconciled rate snapshot
func (s *Server) Rates(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	cop, err := parseAmount("cop", query.Get("cop"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)

		return
	}

	ves, err := parseAmount("ves", query.Get("ves"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)

		return
	}

	rs := s.rates.Fetch(r.Context(), types.FetchParams{
		COPAmount: cop,
		VESAmount: ves,
	})

	w.Header().Set("Cache-Control", fmt.Sprintf("public, max-age=%d", s.config.RatesMaxAge))
	writeJSON(w, http.StatusOK, newRatesResponse(rs))
}

// Quote serves a forward, inverse or sheet quote,
// computed with the caller's adjustments
func (s *Server) Quote(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	mode := strings.ToLower(strings.TrimSpace(query.Get("mode")))
	if mode == "" {
		mode = modeForward
	}

	fee, err := s.parseFee(query.Get("fee_pct"), query.Get("fee_fixed"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)

		return
	}

	adj, err := s.callerAdjustments(r)
	if err != nil {
		s.logger.Debug(
			"unable to load caller adjustments",
			"err", err,
		)

		writeError(w, http.StatusInternalServerError, errUnableToLoadSettings)

		return
	}

	resp := &QuoteResponse{
		Mode:        mode,
		Fee:         fee,
		Adjustments: adj,
	}

	switch mode {
	case modeForward:
		cop, err := parseAmount("cop", query.Get("cop"))
		if err != nil {
			writeError(w, http.StatusBadRequest, err)

			return
		}

		rs := s.rates.Fetch(r.Context(), types.FetchParams{COPAmount: cop})
		resp.Warnings = rs.Warnings

		q, err := quote.Forward(cop, rs, adj, fee)
		if err != nil {
			writeUnavailable(w, err)

			return
		}

		resp.Quote = q
	case modeInverse:
		amounts := make(map[quote.Target]float64, len(inverseParams))

		for _, param := range inverseParams {
			amount, err := parseAmount(param.name, query.Get(param.name))
			if err != nil {
				writeError(w, http.StatusBadRequest, err)

				return
			}

			if amount > 0 {
				amounts[param.target] = amount
			}
		}

		var last quote.Target

		if raw := strings.TrimSpace(query.Get("last")); raw != "" {
			target, ok := quote.ParseTarget(strings.ToUpper(raw))
			if !ok {
				writeError(w, http.StatusBadRequest, errInvalidTarget)

				return
			}

			last = target
		}

		if len(amounts) == 0 {
			writeError(w, http.StatusUnprocessableEntity, errNoTargetAmount)

			return
		}

		rs := s.rates.Fetch(r.Context(), types.FetchParams{VESAmount: amounts[quote.TargetVES]})
		resp.Warnings = rs.Warnings

		rows := quote.Table(amounts, rs, adj, fee)
		for _, row := range rows {
			qr := QuoteRow{
				Target: row.Target,
				Amount: row.Amount,
				Quote:  row.Quote,
			}

			if row.Err != nil {
				qr.Error = row.Err.Error()
			}

			resp.Rows = append(resp.Rows, qr)
		}

		active, ok := quote.SelectActive(rows, last)
		if !ok {
			writeUnavailable(w, rows[0].Err)

			return
		}

		resp.Quote = active.Quote
	case modeSheet:
		rs := s.rates.Fetch(r.Context(), types.FetchParams{})
		resp.Warnings = rs.Warnings
		resp.Sheet = quote.Sheet(quote.DefaultSheetAmounts, rs, adj, fee)
	default:
		writeError(w, http.StatusBadRequest, errInvalidMode)

		return
	}

	if resp.Quote != nil {
		resp.Summary = quote.Summary(resp.Quote, query.Get("title"))
	}

	writeJSON(w, http.StatusOK, resp)
}

// GetSettings serves the caller's adjustments
func (s *Server) GetSettings(w http.ResponseWriter, r *http.Request) {
	user, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	adj, err := s.settings.Adjustments(r.Context(), user.ID)
	if err != nil {
		s.logger.Debug(
			"unable to load adjustments",
			"user", user.ID,
			"err", err,
		)

		writeError(w, http.StatusInternalServerError, errUnableToLoadSettings)

		return
	}

	writeJSON(w, http.StatusOK, &SettingsResponse{
		Adjustments: adj,
		Defaults:    types.DefaultAdjustments(),
	})
}

// PutSettings replaces the caller's adjustments
func (s *Server) PutSettings(w http.ResponseWriter, r *http.Request) {
	user, ok := s.requireUser(w, r)
	if !ok {
		return
	}

	var req SettingsRequest

	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxSettingsBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errInvalidPayload)

		return
	}

	adj, err := s.settings.Update(r.Context(), user.ID, req.adjustments())
	if err != nil {
		s.logger.Debug(
			"unable to update adjustments",
			"user", user.ID,
			"err", err,
		)

		writeError(w, http.StatusInternalServerError, errUnableToSaveSettings)

		return
	}

	writeJSON(w, http.StatusOK, &SettingsResponse{
		Adjustments: adj,
		Defaults:    types.DefaultAdjustments(),
	})
}

// currentUser resolves the session user, nil for anonymous callers
func (s *Server) currentUser(r *http.Request) (*types.User, error) {
	cookie, err := r.Cookie(s.config.SessionCookie)
	if err != nil || cookie.Value == "" {
		return nil, nil //nolint:nilnil // anonymous
	}

	user, err := s.storage.UserBySession(r.Context(), cookie.Value)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil //nolint:nilnil // anonymous
		}

		return nil, err
	}

	if !user.Usable(s.now()) {
		return nil, nil //nolint:nilnil // anonymous
	}

	return user, nil
}

// requireUser writes the error response when the caller is not signed in
func (s *Server) requireUser(w http.ResponseWriter, r *http.Request) (*types.User, bool) {
	user, err := s.currentUser(r)
	if err != nil {
		s.logger.Debug(
			"unable to resolve session",
			"err", err,
		)

		writeError(w, http.StatusInternalServerError, errUnableToResolveUser)

		return nil, false
	}

	if user == nil {
		writeError(w, http.StatusUnauthorized, errUnauthorized)

		return nil, false
	}

	return user, true
}

// callerAdjustments returns the signed-in caller's adjustments, or the defaults
func (s *Server) callerAdjustments(r *http.Request) (types.AdjustmentSet, error) {
	user, err := s.currentUser(r)
	if err != nil {
		return types.AdjustmentSet{}, err
	}

	if user == nil {
		return types.DefaultAdjustments(), nil
	}

	return s.settings.Adjustments(r.Context(), user.ID)
}

// parseFee parses the fee model, falling back to the configured percentage
func (s *Server) parseFee(pctRaw, fixedRaw string) (quote.Fee, error) {
	pctRaw = strings.TrimSpace(pctRaw)
	fixedRaw = strings.TrimSpace(fixedRaw)

	switch {
	case pctRaw != "" && fixedRaw != "":
		return quote.Fee{}, errAmbiguousFee
	case fixedRaw != "":
		v, err := parseAmount("fee_fixed", fixedRaw)
		if err != nil {
			return quote.Fee{}, err
		}

		return quote.FixedFee(v), nil
	case pctRaw != "":
		v, err := parseAmount("fee_pct", pctRaw)
		if err != nil {
			return quote.Fee{}, err
		}

		if v > 100 {
			return quote.Fee{}, errInvalidFeePct
		}

		return quote.PercentageFee(v / 100), nil
	default:
		return quote.PercentageFee(s.config.DefaultFeePct / 100), nil
	}
}

// parseAmount parses an optional non-negative amount. Empty is 0
func parseAmount(name, raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, fmt.Errorf("invalid %s (must be a non-negative number)", name)
	}

	return v, nil
}

func writeUnavailable(w http.ResponseWriter, err error) {
	var unavailable *quote.Unavailable
	if errors.As(err, &unavailable) {
		writeError(w, http.StatusUnprocessableEntity, unavailable)

		return
	}

	if err == nil {
		err = errNoTargetAmount
	}

	writeError(w, http.StatusUnprocessableEntity, err)
}

// writeJSON encodes the body before committing the status,
// so an unencodable body surfaces as a 500
func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "unable to encode response", http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	_, _ = w.Write(append(body, '\n')) //nolint:errcheck // Fine to ignore
}

func writeError(w http.ResponseWriter, status int, err error) {
	resp := &ErrorResponse{
		Error: err.Error(),
	}

	writeJSON(w, status, resp)
}
