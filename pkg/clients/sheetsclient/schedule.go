package sheetsclient

import (
	"fmt"
	"time"
)

// ScheduleRow is one assignment, or one unfilled shift, in a published schedule
type ScheduleRow struct {
	Date     string // Format: "Mon Jan 02 2006"
	Start    string // Format: "15:04"
	End      string
	Family   string
	Skill    string
	Provider string // empty for an unfilled shift
	Status   string
	Message  string
}

// PublishedSchedule is a week of rows, ordered by shift start
type PublishedSchedule struct {
	WeekStart time.Time
	Rows      []ScheduleRow
}

var scheduleHeader = []interface{}{"Date", "Start", "End", "Family", "Skill", "Provider", "Status", "Message"}

// TabTitle names the tab for the week, e.g. "Week of Mon Mar 03 2025"
func (s *PublishedSchedule) TabTitle() string {
	return "Week of " + s.WeekStart.Format("Mon Jan 02 2006")
}

// values renders the header and rows for the Sheets API
func (s *PublishedSchedule) values() [][]interface{} {
	values := make([][]interface{}, 0, len(s.Rows)+1)
	values = append(values, scheduleHeader)
	for _, row := range s.Rows {
		provider := row.Provider
		if provider == "" {
			provider = "UNFILLED"
		}
		values = append(values, []interface{}{
			row.Date, row.Start, row.End, row.Family, row.Skill, provider, row.Status, row.Message,
		})
	}
	return values
}

// PublishSchedule writes the week to its own tab, creating the tab if it does not
// exist and replacing its contents if it does
func (c *Client) PublishSchedule(spreadsheetID string, schedule *PublishedSchedule) error {
	title := schedule.TabTitle()

	existing, err := c.findSheet(spreadsheetID, title)
	if err != nil {
		return err
	}

	if existing == nil {
		if _, err := c.createSheet(spreadsheetID, title); err != nil {
			return fmt.Errorf("failed to create tab %q: %w", title, err)
		}
	} else if err := c.clearSheet(spreadsheetID, title); err != nil {
		return fmt.Errorf("failed to clear tab %q: %w", title, err)
	}

	if err := c.writeValues(spreadsheetID, title, schedule.values()); err != nil {
		return fmt.Errorf("failed to write tab %q: %w", title, err)
	}

	return nil
}
