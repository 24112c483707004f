package masking

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/rand"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Per-field-type strategy lists, ordered from lightest to heaviest. The
// masking level indexes into the list; the index clamps to the last entry.
var fieldStrategies = map[string][]Strategy{
	"email":       {StrategyHash, StrategyDomainOnly, StrategySynthetic, StrategyRedact},
	"phone":       {StrategyPartial, StrategyHash, StrategySynthetic, StrategyRedact},
	"ssn":         {StrategyPartial, StrategyHash, StrategyRedact},
	"name":        {StrategyInitials, StrategyPseudonym, StrategySynthetic, StrategyRedact},
	"address":     {StrategyCityOnly, StrategyRegionOnly, StrategySynthetic, StrategyRedact},
	"dob":         {StrategyYearOnly, StrategyAgeRange, StrategySynthetic, StrategyRedact},
	"ip_address":  {StrategySubnet, StrategyHash, StrategySynthetic, StrategyRedact},
	"credit_card": {StrategyLastFour, StrategyHash, StrategyRedact},
	"medical":     {StrategyCategoryOnly, StrategySynthetic, StrategyRedact},
	"financial":   {StrategyRange, StrategySynthetic, StrategyRedact},
	"generic":     {StrategyPartial, StrategyHash, StrategySynthetic, StrategyRedact},
}

var (
	syntheticNames = []string{
		"Alex Johnson", "Jordan Smith", "Casey Williams", "Morgan Brown",
		"Riley Davis", "Quinn Miller", "Avery Wilson", "Cameron Moore",
	}
	syntheticDomains = []string{"example.com", "test.org", "demo.net", "sample.io"}

	yearPattern = regexp.MustCompile(`\d{4}`)
	digitsOnly  = regexp.MustCompile(`[^\d.]`)
)

// applyStrategy transforms a single value. Synthetic output is random by
// design; everything else is deterministic.
func applyStrategy(value any, fieldType string, strategy Strategy) any {
	if value == nil {
		return nil
	}
	str := fmt.Sprint(value)

	switch strategy {
	case StrategyRedact:
		return "[REDACTED]"
	case StrategyHash:
		return hashValue(str)
	case StrategyPartial:
		return partialMask(str, 3)
	case StrategySynthetic:
		return generateSynthetic(fieldType)
	case StrategyDomainOnly:
		return extractDomain(str)
	case StrategyLastFour:
		return lastNChars(str, 4)
	case StrategyInitials:
		return toInitials(str)
	case StrategyPseudonym:
		return pseudonym(str)
	case StrategyCityOnly:
		return "[City Level Only]"
	case StrategyRegionOnly:
		return "[Region Hidden]"
	case StrategyYearOnly:
		return extractYear(str)
	case StrategyAgeRange:
		return toAgeRange(str)
	case StrategySubnet:
		return maskIP(str)
	case StrategyCategoryOnly:
		return "[Category: Medical]"
	case StrategyRange:
		return toRange(str)
	default:
		return "[MASKED]"
	}
}

// hashValue is a deterministic one-way digest truncated for display.
func hashValue(value string) string {
	sum := sha256.Sum256([]byte(value))
	return "HASH_" + hex.EncodeToString(sum[:])[:12]
}

func partialMask(value string, visible int) string {
	if len(value) <= visible {
		return strings.Repeat("*", len(value))
	}
	return value[:visible] + strings.Repeat("*", len(value)-visible)
}

func generateSynthetic(fieldType string) string {
	switch fieldType {
	case "email":
		const letters = "abcdefghijklmnopqrstuvwxyz"
		name := make([]byte, 8)
		for i := range name {
			name[i] = letters[rand.Intn(len(letters))]
		}
		return fmt.Sprintf("%s@%s", name, syntheticDomains[rand.Intn(len(syntheticDomains))])
	case "phone":
		return fmt.Sprintf("+1-555-%03d-%04d", 100+rand.Intn(900), 1000+rand.Intn(9000))
	case "name":
		return syntheticNames[rand.Intn(len(syntheticNames))]
	case "ssn":
		return fmt.Sprintf("XXX-XX-%04d", 1000+rand.Intn(9000))
	case "address":
		return fmt.Sprintf("%d Synthetic Street, Demo City, ST 00000", 100+rand.Intn(900))
	case "dob":
		return fmt.Sprintf("%d-01-01", 1950+rand.Intn(51))
	case "ip_address":
		return fmt.Sprintf("10.0.%d.%d", rand.Intn(256), rand.Intn(256))
	case "credit_card":
		return "XXXX-XXXX-XXXX-0000"
	default:
		return fmt.Sprintf("[SYNTHETIC_%s]", strings.ToUpper(fieldType))
	}
}

func extractDomain(email string) string {
	if at := strings.Index(email, "@"); at >= 0 {
		return "***@" + email[at+1:]
	}
	return "[MASKED_EMAIL]"
}

func lastNChars(value string, n int) string {
	if len(value) <= n {
		return strings.Repeat("*", len(value))
	}
	return strings.Repeat("*", len(value)-n) + value[len(value)-n:]
}

func toInitials(name string) string {
	var b strings.Builder
	for _, part := range strings.Fields(name) {
		b.WriteString(strings.ToUpper(part[:1]))
		b.WriteString(".")
	}
	return b.String()
}

// pseudonym maps a value to a stable alias; the same input always yields
// the same alias, so joins across masked records remain possible.
func pseudonym(value string) string {
	sum := sha256.Sum256([]byte(value))
	return "User_" + hex.EncodeToString(sum[:])[:8]
}

func extractYear(dateStr string) string {
	if year := yearPattern.FindString(dateStr); year != "" {
		return year
	}
	return "[YEAR]"
}

func toAgeRange(dateStr string) string {
	yearStr := yearPattern.FindString(dateStr)
	if yearStr == "" {
		return "[AGE_RANGE]"
	}
	year, err := strconv.Atoi(yearStr)
	if err != nil {
		return "[AGE_RANGE]"
	}
	age := time.Now().Year() - year
	switch {
	case age < 18:
		return "Under 18"
	case age < 30:
		return "18-29"
	case age < 45:
		return "30-44"
	case age < 60:
		return "45-59"
	default:
		return "60+"
	}
}

func maskIP(ip string) string {
	parts := strings.Split(ip, ".")
	if len(parts) == 4 {
		return fmt.Sprintf("%s.%s.0.0/16", parts[0], parts[1])
	}
	return "[MASKED_IP]"
}

func toRange(value string) string {
	num, err := strconv.ParseFloat(digitsOnly.ReplaceAllString(value, ""), 64)
	if err != nil {
		return "[RANGE]"
	}
	switch {
	case num < 1000:
		return "$0-$1,000"
	case num < 10000:
		return "$1,000-$10,000"
	case num < 100000:
		return "$10,000-$100,000"
	default:
		return "$100,000+"
	}
}
