package scan

import (
	"strings"

	"github.com/cybermorph/morphcli/internal/client/models"
)

// Verdict labels attached to a completed scan.
const (
	VerdictMalicious  = "malicious"
	VerdictSuspicious = "suspicious"
	VerdictBenign     = "benign"
	VerdictUnknown    = "unknown"
)

// Report is the classified result of one scan.
//
// Malicious and Clean are computed independently and may both be true when
// the verdict string and the numeric score disagree; display logic checks
// Malicious first, so a high score always shows as a threat.
type Report struct {
	Filename  string
	Verdict   string
	Score     *float64
	Timestamp string
	Malicious bool
	Clean     bool
	Raw       *models.ScanResponse
}

// Classify normalizes a raw engine response into a Report.
//
// Verdict precedence: the explicit verdict field (lowercased), else the first
// entry of the alternate Verdicts list, else "unknown". The score comes from
// score, falling back to malware_probability.
func Classify(resp *models.ScanResponse) Report {
	verdict := resp.Verdict
	if verdict == "" && len(resp.Verdicts) > 0 {
		verdict = resp.Verdicts[0]
	}
	if verdict == "" {
		verdict = VerdictUnknown
	}
	verdict = strings.ToLower(verdict)

	score := resp.Score
	if score == nil {
		score = resp.MalwareProbability
	}

	timestamp := resp.Timestamp
	if timestamp == "" {
		timestamp = resp.CreatedAt
	}

	return Report{
		Filename:  resp.Filename,
		Verdict:   verdict,
		Score:     score,
		Timestamp: timestamp,
		Malicious: strings.Contains(verdict, "malicious") ||
			strings.Contains(verdict, "threat") ||
			(score != nil && *score > 0.5),
		Clean: strings.Contains(verdict, "clean") ||
			strings.Contains(verdict, "safe"),
		Raw: resp,
	}
}
