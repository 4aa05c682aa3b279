package Controllers

import (
	"bytes"
	"fmt"
	"time"

	"Dayboard/Board"
	"Dayboard/Models"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
)

var exportHeaders = []string{
	"User", "Task", "Description", "Time", "Type", "Status",
	"Started", "Finished", "Carried From", "Remark",
}

func formatStamp(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02 15:04")
}

func exportRow(userName string, item Board.Item) []interface{} {
	if item.Kind == Board.KindTask {
		task := item.Task
		return []interface{}{
			userName, task.Title, task.Description, task.Time,
			string(task.Type), "Not started", "", "", "", "",
		}
	}
	entry := item.Log
	carried := ""
	if entry.PickupDate != "" {
		carried = entry.Date
	}
	taskType := ""
	if entry.Task != nil {
		taskType = string(entry.Task.Type)
	}
	return []interface{}{
		userName, entry.Title, entry.Description, entry.Time, taskType,
		string(entry.Status), formatStamp(entry.DateTimeStarted),
		formatStamp(entry.DateTimeFinished), carried, entry.Remark,
	}
}

func renderBoardExcel(date string, users []Models.User, perUser map[uint][]Board.Item) (*bytes.Buffer, error) {
	f := excelize.NewFile()

	sheetName := "Board " + date
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("error creating sheet: %v", err)
	}
	f.SetActiveSheet(index)

	for i, header := range exportHeaders {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold: true,
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6E6FA"},
			Pattern: 1,
		},
	})
	if err == nil {
		f.SetRowStyle(sheetName, 1, 1, headerStyle)
	}

	row := 2
	for _, user := range users {
		for _, item := range perUser[user.ID] {
			for colIndex, value := range exportRow(user.Name, item) {
				cell := fmt.Sprintf("%c%d", 'A'+colIndex, row)
				f.SetCellValue(sheetName, cell, value)
			}
			row++
		}
	}

	for i := 0; i < len(exportHeaders); i++ {
		f.SetColWidth(sheetName, string('A'+rune(i)), string('A'+rune(i)), 18)
	}

	if f.GetSheetName(0) != sheetName {
		f.DeleteSheet("Sheet1")
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("error writing Excel file to buffer: %v", err)
	}
	return &buf, nil
}

// ExportBoard renders the selected users' board for a date as a
// downloadable spreadsheet
func (c *BoardController) ExportBoard(ctx *fiber.Ctx) error {
	date, err := parseDate(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid date"})
	}
	userIDs, err := parseUserIDs(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid users parameter"})
	}

	sorting := c.loadSorting(CurrentUser(ctx).ID)
	perUser, err := c.buildBoard(date, userIDs, sorting)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	var users []Models.User
	if err := c.DB.Where("id IN ?", userIDs).Order("name asc").Find(&users).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	buf, err := renderBoardExcel(date, users, perUser)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	filename := fmt.Sprintf("board_%s.xlsx", date)
	ctx.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	ctx.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	ctx.Set("Content-Length", fmt.Sprintf("%d", buf.Len()))
	return ctx.Send(buf.Bytes())
}
