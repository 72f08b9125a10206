package businessflow

import (
	"context"
	"strconv"

	"github.com/amirphl/carrier-pos/models"
	"github.com/amirphl/carrier-pos/utils"
	"github.com/xuri/excelize/v2"
)

const (
	ExportDevicesSheet = "Devices"
	ExportForSaleSheet = "For Sale"

	// InventoryExportFilename is the download name of ExportInventory
	InventoryExportFilename = "inventory.xlsx"
)

// ExportInventory writes the device inventory and the shop catalog to an xlsx workbook
func (f *InventoryFlowImpl) ExportInventory(ctx context.Context) (_ []byte, err error) {
	defer wrapError(&err, "INVENTORY_EXPORT_FAILED", "Failed to export inventory")

	devices, err := f.deviceRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	hasIMEI := true
	lines, err := f.lineRepo.ByFilter(ctx, models.LineFilter{HasIMEI: &hasIMEI}, "id ASC", 0, 0)
	if err != nil {
		return nil, err
	}
	forSale, err := f.deviceForSaleRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	mdnByIMEI := make(map[string]string, len(lines))
	for _, l := range lines {
		if imei := utils.DerefString(l.IMEI); imei != "" {
			mdnByIMEI[imei] = l.MDN
		}
	}

	xl := excelize.NewFile()
	defer func() { _ = xl.Close() }()

	xl.SetSheetName(xl.GetSheetName(0), ExportDevicesSheet)
	header := []string{"ID", "Device", "IMEI", "ICCID", "Assigned MDN"}
	if err = xl.SetSheetRow(ExportDevicesSheet, "A1", &header); err != nil {
		return nil, err
	}
	for i, d := range devices {
		record := []string{
			strconv.FormatInt(d.ID, 10),
			utils.DerefString(d.Device),
			d.IMEI,
			utils.DerefString(d.ICCID),
			mdnByIMEI[d.IMEI],
		}
		cellRef, _ := excelize.CoordinatesToCellName(1, i+2)
		if err = xl.SetSheetRow(ExportDevicesSheet, cellRef, &record); err != nil {
			return nil, err
		}
	}

	if _, err = xl.NewSheet(ExportForSaleSheet); err != nil {
		return nil, err
	}
	header = []string{"ID", "Device", "Price", "Available"}
	if err = xl.SetSheetRow(ExportForSaleSheet, "A1", &header); err != nil {
		return nil, err
	}
	for i, d := range forSale {
		available := "yes"
		if d.IsAvailable != nil && !*d.IsAvailable {
			available = "no"
		}
		record := []any{d.ID, d.Device, d.Price, available}
		cellRef, _ := excelize.CoordinatesToCellName(1, i+2)
		if err = xl.SetSheetRow(ExportForSaleSheet, cellRef, &record); err != nil {
			return nil, err
		}
	}

	buf, err := xl.WriteToBuffer()
	if err != nil {
		return nil, NewBusinessError("EXCEL_WRITE_ERROR", "Failed to write Excel file", err)
	}
	return buf.Bytes(), nil
}
