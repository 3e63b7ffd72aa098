package ledger

import (
	"encoding/csv"
	"io"
	"log/slog"
	"net/http"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/lift-alumni/liftfund/internal/money"
	"github.com/lift-alumni/liftfund/internal/platform/httpx"
)

// WriteEntriesCSV serialises ledger entries to CSV, streaming rows from
// the provided iterator so large exports never materialise in memory.
func WriteEntriesCSV(w io.Writer, each func(fn func(LedgerEntry) error) error) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write([]string{
		"ID", "Kind", "Type", "Bucket", "Date", "Status",
		"Total", "LIFT Share", "AA Share", "Purpose", "Category", "Notes",
	}); err != nil {
		return err
	}

	printer := message.NewPrinter(language.English)

	err := each(func(e LedgerEntry) error {
		bucket := ""
		if e.Bucket != nil {
			bucket = string(*e.Bucket)
		}
		lift, aa := "", ""
		if e.IsSplit() {
			lift = formatAmount(printer, e.LiftAmount)
			aa = formatAmount(printer, e.AAAmount)
		}
		return writer.Write([]string{
			e.ID.String(),
			string(e.Kind),
			string(e.ContributionType),
			bucket,
			e.Date.Format(dateLayout),
			string(e.Status),
			formatAmount(printer, e.Total),
			lift,
			aa,
			e.Purpose,
			e.Category,
			e.Notes,
		})
	})
	if err != nil {
		return err
	}

	writer.Flush()
	return writer.Error()
}

// formatAmount renders cents as a grouped decimal, e.g. "12,345.60".
func formatAmount(p *message.Printer, m money.Money) string {
	c := m.Cents()
	sign := ""
	if c < 0 {
		sign = "-"
		c = -c
	}
	return p.Sprintf("%s%d.%02d", sign, c/100, c%100)
}

// exportCSV streams the filtered ledger as a CSV download.
func (h *Handler) exportCSV(w http.ResponseWriter, r *http.Request) {
	req, err := parseListRequest(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	req.Limit = 0 // exports are unbounded

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="ledger.csv"`)

	if err := WriteEntriesCSV(w, func(fn func(LedgerEntry) error) error {
		return h.service.repo.Each(r.Context(), req, fn)
	}); err != nil {
		// Headers are gone at this point; log and abort the stream.
		h.logger.Error("ledger export", slog.Any("error", err))
	}
}
