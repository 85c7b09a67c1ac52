package usecases

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"sevapay.backend/internal/domain/entities"
	domainerrors "sevapay.backend/internal/domain/errors"
	"sevapay.backend/internal/infrastructure/bbps"
	"sevapay.backend/pkg/crypto"
)

// CalculateChargePaise returns the flat service charge for a payment amount
func CalculateChargePaise(amountPaise int64) int64 {
	for _, tier := range chargeTiers {
		if amountPaise <= tier.UpToPaise {
			return tier.ChargePaise
		}
	}
	return terminalChargePaise
}

// IsPrepaidCategory reports whether a category takes the no-fetch fast path
func IsPrepaidCategory(categoryName string) bool {
	name := strings.ToLower(categoryName)
	for _, p := range prepaidCategories {
		if strings.Contains(name, p) {
			return true
		}
	}
	return false
}

func isNoBillDue(message string) bool {
	msg := strings.ToLower(message)
	for _, kw := range noBillDueKeywords {
		if strings.Contains(msg, kw) {
			return true
		}
	}
	return false
}

var numericParamPattern = regexp.MustCompile(`^[0-9]+$`)

// validateBillerParams checks user-supplied consumer parameters against a
// biller's declared schema before any vendor call is made.
func validateBillerParams(params map[string]string, schema []entities.BillerParam) error {
	for _, p := range schema {
		value := strings.TrimSpace(params[p.ParamName])
		if value == "" {
			if p.Optional {
				continue
			}
			return domainerrors.BadRequest(fmt.Sprintf("%s is required", p.ParamName))
		}
		if p.MinLength > 0 && p.MinLength == p.MaxLength && len(value) != p.MinLength {
			return domainerrors.BadRequest(fmt.Sprintf("%s must be exactly %d characters", p.ParamName, p.MinLength))
		}
		if p.MinLength > 0 && len(value) < p.MinLength {
			return domainerrors.BadRequest(fmt.Sprintf("%s must be between %d and %d characters", p.ParamName, p.MinLength, p.MaxLength))
		}
		if p.MaxLength > 0 && len(value) > p.MaxLength {
			return domainerrors.BadRequest(fmt.Sprintf("%s must be between %d and %d characters", p.ParamName, p.MinLength, p.MaxLength))
		}
		if strings.EqualFold(p.DataType, "NUMERIC") && !numericParamPattern.MatchString(value) {
			return domainerrors.BadRequest(fmt.Sprintf("%s must contain only digits", p.ParamName))
		}
		if p.Regex != "" {
			re, err := regexp.Compile(p.Regex)
			if err == nil && !re.MatchString(value) {
				return domainerrors.BadRequest(fmt.Sprintf("%s has an invalid format", p.ParamName))
			}
		}
	}
	return nil
}

// verifyTpin gates the pay call. A partner without a configured T-PIN pays
// without one; once a T-PIN is set it becomes mandatory.
func verifyTpin(partner *entities.Partner, tpin string) error {
	configured := partner.TpinHash.Valid && partner.TpinHash.String != ""
	if !configured {
		if tpin != "" {
			return domainerrors.BadRequest("T-PIN is not set for this account")
		}
		return nil
	}
	if len(tpin) < 4 || len(tpin) > 6 || !numericParamPattern.MatchString(tpin) {
		return domainerrors.BadRequest("T-PIN must be 4 to 6 digits")
	}
	if !crypto.CheckTpin(tpin, partner.TpinHash.String) {
		return domainerrors.NewAppError(401, "Incorrect T-PIN", domainerrors.ErrInvalidTpin)
	}
	return nil
}

func toBillerEntity(b *bbps.Biller) entities.Biller {
	params := make([]entities.BillerParam, 0, len(b.ParamInfo))
	for _, p := range b.ParamInfo {
		minLen, _ := strconv.Atoi(p.MinLength)
		maxLen, _ := strconv.Atoi(p.MaxLength)
		params = append(params, entities.BillerParam{
			ParamName: p.ParamName,
			DataType:  p.DataType,
			Optional:  strings.EqualFold(p.Optional, "true"),
			MinLength: minLen,
			MaxLength: maxLen,
			Regex:     p.Regex,
		})
	}
	exactness := entities.AmountExactness(strings.ToUpper(strings.TrimSpace(b.AmountExactness)))
	if exactness == "" {
		exactness = entities.AmountAny
	}
	return entities.Biller{
		BillerID:        b.BillerID,
		Name:            b.BillerName,
		CategoryName:    b.CategoryName,
		AmountExactness: exactness,
		FetchRequired:   !strings.EqualFold(b.FetchRequired, "NOT_SUPPORTED"),
		Params:          params,
	}
}

// parsePaise reads a vendor amount. Integer strings are paise; decimal
// strings are rupees and get converted.
func parsePaise(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty amount")
	}
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	return int64(f*100 + 0.5), nil
}

// minimumDuePaise digs the minimum-due amount out of a fetched bill's
// additional info. Vendors spell the label several ways ("Minimum Due
// Amount", "MIN DUE", ...), so labels match by substring.
func minimumDuePaise(bill *bbps.FetchBillResponse) (int64, bool) {
	for _, entry := range bill.AllInfoEntries() {
		name := strings.ToLower(strings.TrimSpace(entry.InfoName))
		for _, label := range minimumDueLabels {
			if !strings.Contains(name, label) {
				continue
			}
			paise, err := parsePaise(entry.InfoValue)
			if err != nil {
				return 0, false
			}
			return paise, true
		}
	}
	return 0, false
}

func sessionMinimumDue(session *entities.PaymentSession) (int64, bool) {
	if session.Bill == nil || session.Bill.AdditionalInfo == nil {
		return 0, false
	}
	raw, ok := session.Bill.AdditionalInfo["minimumDuePaise"]
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
