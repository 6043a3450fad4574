package evidence

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"pharmaops/pkg/domain"
	dErrors "pharmaops/pkg/domain-errors"
)

// ExportXLSX renders the evidence pack as a spreadsheet, one sheet per
// concern, ready to hand to an inspector.
func (s *Service) ExportXLSX(ctx context.Context, actor domain.Actor, orderID domain.OrderID) ([]byte, error) {
	pack, err := s.Build(ctx, actor, orderID)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := writeOrderSheet(f, pack); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "write order sheet")
	}
	if err := writeChecklistSheet(f, pack); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "write checklist sheet")
	}
	if err := writeDocumentsSheet(f, pack); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "write documents sheet")
	}
	if err := writeAnchorsSheet(f, pack); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "write anchors sheet")
	}
	if err := writeAuditSheet(f, pack); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "write audit sheet")
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "render workbook")
	}
	return buf.Bytes(), nil
}

func writeOrderSheet(f *excelize.File, pack Pack) error {
	const sheet = "Order"
	f.SetSheetName("Sheet1", sheet)
	rows := [][]any{
		{"Order ID", pack.Order.ID.String()},
		{"Company ID", pack.Order.CompanyID.String()},
		{"Status", string(pack.Order.Status)},
		{"Created At", pack.Order.CreatedAt.Format(time.RFC3339)},
		{"Pack Generated At", pack.GeneratedAt.Format(time.RFC3339)},
	}
	return writeRows(f, sheet, rows)
}

func writeChecklistSheet(f *excelize.File, pack Pack) error {
	const sheet = "Checklist"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	rows := [][]any{{"Requirement ID", "Requirement", "Status", "Notes"}}
	for _, item := range pack.Checklist {
		rows = append(rows, []any{item.RequirementID.String(), item.Name, string(item.Status), item.Notes})
	}
	return writeRows(f, sheet, rows)
}

func writeDocumentsSheet(f *excelize.File, pack Pack) error {
	const sheet = "Documents"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	rows := [][]any{{"Document ID", "Title", "Version", "Status", "Approved By", "Signature", "File Hash"}}
	for _, doc := range pack.Documents {
		approvedBy := ""
		if doc.ApprovedBy != nil {
			approvedBy = doc.ApprovedBy.String()
		}
		rows = append(rows, []any{
			doc.ID.String(), doc.Title, doc.Version, string(doc.Status),
			approvedBy, doc.Signature, doc.FileHash,
		})
	}
	return writeRows(f, sheet, rows)
}

func writeAnchorsSheet(f *excelize.File, pack Pack) error {
	const sheet = "Anchors"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	rows := [][]any{{"Document ID", "Tx Hash", "Network", "Anchored At"}}
	for _, a := range pack.Anchors {
		rows = append(rows, []any{
			a.DocumentID.String(), a.TxHash, a.Network, a.AnchoredAt.Format(time.RFC3339),
		})
	}
	return writeRows(f, sheet, rows)
}

func writeAuditSheet(f *excelize.File, pack Pack) error {
	const sheet = "Audit Trail"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	rows := [][]any{{"Timestamp", "Action", "Actor", "Details"}}
	for _, e := range pack.Audit {
		actor := "system"
		if e.ActorID != nil {
			actor = e.ActorID.String()
		}
		rows = append(rows, []any{
			e.CreatedAt.Format(time.RFC3339), string(e.Action), actor, fmt.Sprintf("%v", e.Details),
		})
	}
	return writeRows(f, sheet, rows)
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}
