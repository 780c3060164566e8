package cleanup

import (
	"fmt"
	"io"
	"time"
)

const (
	cyan     = "\033[38;2;86;182;194m"  // One Dark Cyan: #56B6C2
	dimCyan  = "\033[38;2;47;91;102m"   // Dim Cyan: #2F5B66
	grey     = "\033[38;2;110;118;129m" // Brighter Grey: #6E7681
	dimGrey  = "\033[38;2;75;82;99m"    // Darker Grey: #4B5263
	success  = "\033[38;2;62;130;144m"  // Dim Cyan: #3E8290
	warning  = "\033[38;2;229;192;123m" // One Dark Yellow: #E5C07B
	errorRed = "\033[38;2;224;108;117m" // One Dark Red: #E06C75
	white    = "\033[38;2;171;178;191m" // One Dark Foreground: #ABB2BF
	reset    = "\033[0m"
	bold     = "\033[1m"
)

// Reporter prints sweep summaries for the command line.
type Reporter struct {
	out   io.Writer
	color bool
}

func NewReporter(out io.Writer, color bool) *Reporter {
	return &Reporter{out: out, color: color}
}

func (r *Reporter) c(code string) string {
	if r.color {
		return code
	}
	return ""
}

func (r *Reporter) LogHeader(dir string, retention time.Duration) {
	fmt.Fprintf(r.out, "%s%s░▒▓ REPORT SWEEP %s%s %s(retention %v)%s\n",
		r.c(bold), r.c(dimCyan), r.c(cyan), dir, r.c(grey), retention, r.c(reset))
}

func (r *Reporter) LogResult(res Result) {
	switch {
	case res.Failed > 0:
		fmt.Fprintf(r.out, "%s%s⚠ %s%d deleted, %d failed of %d scanned (%s freed) in %v%s\n",
			r.c(bold), r.c(warning), r.c(grey), res.Deleted, res.Failed, res.Scanned,
			FormatBytes(res.FreedBytes), res.Duration.Round(time.Millisecond), r.c(reset))
	case res.Deleted > 0:
		fmt.Fprintf(r.out, "%s%s✦ %s%d deleted of %d scanned (%s freed) in %v%s\n",
			r.c(success), r.c(bold), r.c(white), res.Deleted, res.Scanned,
			FormatBytes(res.FreedBytes), res.Duration.Round(time.Millisecond), r.c(reset))
	default:
		fmt.Fprintf(r.out, "%s▶ %snothing expired (%d scanned)%s\n",
			r.c(dimGrey), r.c(grey), res.Scanned, r.c(reset))
	}
}

func (r *Reporter) LogError(message string, err error) {
	fmt.Fprintf(r.out, "%s%s✖ ERROR: %s%s: %v%s\n", r.c(bold), r.c(errorRed), r.c(grey), message, err, r.c(reset))
}

// FormatBytes renders n in the largest whole binary unit.
func FormatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
