package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"callcenter-insights-go/internal/types"
)

func TestFixtureStore(t *testing.T) {
	store := NewFixtureStore()
	records := store.ListRecords()

	require.Len(t, records, 6)
	assert.Equal(t, "call_001", records[0].ID)
	assert.Equal(t, "call_006", records[5].ID)
	assert.Nil(t, records[5].Duration)
	assert.Nil(t, records[5].EndTime)
	assert.Equal(t, 2, records[3].TransferCount)

	for _, r := range records {
		assert.NoError(t, r.Validate(), r.ID)
	}
}

func TestFixtureStore_ReturnsCopies(t *testing.T) {
	store := NewFixtureStore()

	first := store.ListRecords()
	first[0].Department = "Mutated"
	*first[0].Duration = 999

	second := store.ListRecords()
	assert.Equal(t, "Technical Support", second[0].Department)
	assert.Equal(t, 15, *second[0].Duration)
}

func TestNewStore_RejectsInvalidRecord(t *testing.T) {
	records := Fixture()
	records[0].Duration = types.IntPtr(1)

	_, err := NewStore(records)
	assert.Error(t, err)
}

func TestNewStore_RejectsUnknownStatus(t *testing.T) {
	records := Fixture()
	records[1].Status = "done"

	_, err := NewStore(records)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown status "done"`)
}

func TestNewStore_RejectsDuplicateID(t *testing.T) {
	records := Fixture()
	records[2].ID = records[0].ID

	_, err := NewStore(records)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate call id "+records[0].ID)
}

func TestOpen_RejectsWorkbookWithUnknownStatus(t *testing.T) {
	f := excelize.NewFile()
	header := []any{"id", "callType", "priority", "status", "startTime"}
	row := []any{"c-1", "inbound", "low", "done", "2024-01-15T10:00:00Z"}
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &header))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &row))
	path := filepath.Join(t.TempDir(), "status.xlsx")
	require.NoError(t, f.SaveAs(path))

	_, err := Open(path)
	assert.Error(t, err)
}

func TestOpen_EmptyPathUsesFixture(t *testing.T) {
	store, err := Open("")
	require.NoError(t, err)
	assert.Len(t, store.ListRecords(), 6)
}

func TestWriteRecords_LoadWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calls.xlsx")
	out, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, WriteRecords(out, Fixture()))
	require.NoError(t, out.Close())

	loaded, err := LoadWorkbook(path)
	require.NoError(t, err)
	assert.Equal(t, Fixture(), loaded)

	store, err := Open(path)
	require.NoError(t, err)
	assert.Len(t, store.ListRecords(), 6)
}

func TestLoadWorkbook_HeaderHeuristics(t *testing.T) {
	f := excelize.NewFile()
	rows := [][]any{
		{"Call ID", "Agent", "Department", "Type", "Priority", "Status", "Start Time", "End Time", "Duration", "CSAT", "FCR", "Notes"},
		{"c-1", "Ann", "Sales", "Inbound", "High", "Resolved", "2024-01-15 09:00", "2024-01-15 09:10", "10", "4", "Yes", "ok"},
		{"", "skipped", "", "", "", "", "", "", "", "", "", ""},
		{"c-2", "Bob", "Sales", "outbound", "low", "open", "2024-01-15T10:00:00Z", "", "", "", "No", ""},
	}
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		row := r
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	path := filepath.Join(t.TempDir(), "custom.xlsx")
	require.NoError(t, f.SaveAs(path))

	loaded, err := LoadWorkbook(path)
	require.NoError(t, err)
	require.Len(t, loaded, 2)

	assert.Equal(t, "c-1", loaded[0].ID)
	assert.Equal(t, "Ann", loaded[0].AgentName)
	assert.Equal(t, types.StatusResolved, loaded[0].Status)
	assert.Equal(t, types.CallInbound, loaded[0].CallType)
	assert.Equal(t, types.PriorityHigh, loaded[0].Priority)
	require.NotNil(t, loaded[0].Duration)
	assert.Equal(t, 10, *loaded[0].Duration)
	require.NotNil(t, loaded[0].CustomerSatisfaction)
	assert.Equal(t, 4, *loaded[0].CustomerSatisfaction)
	assert.True(t, loaded[0].FirstCallResolution)
	assert.NoError(t, loaded[0].Validate())

	assert.Equal(t, types.StatusOpen, loaded[1].Status)
	assert.Equal(t, types.CallOutbound, loaded[1].CallType)
	assert.NoError(t, loaded[1].Validate())
	assert.Nil(t, loaded[1].Duration)
	assert.False(t, loaded[1].FirstCallResolution)
}

func TestLoadWorkbook_BadNumber(t *testing.T) {
	f := excelize.NewFile()
	header := []any{"id", "startTime", "duration"}
	row := []any{"c-1", "2024-01-15T10:00:00Z", "ten"}
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &header))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &row))
	path := filepath.Join(t.TempDir(), "bad.xlsx")
	require.NoError(t, f.SaveAs(path))

	_, err := LoadWorkbook(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 2")
}

func TestWriteTable(t *testing.T) {
	table := types.TableSpec{
		Title:   "Department Performance",
		Headers: []string{"Department", "Total Calls"},
		Rows:    [][]types.Value{{types.S("Billing"), types.I(2)}},
		Data:    []types.Row{{"Department": types.S("Billing"), "Total Calls": types.I(2)}},
	}
	path := filepath.Join(t.TempDir(), "table.xlsx")
	out, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, WriteTable(out, table))
	require.NoError(t, out.Close())

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	got, err := f.GetRows("Department Performance")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Department", "Total Calls"}, {"Billing", "2"}}, got)
}

func TestWriteTable_RejectsRaggedTable(t *testing.T) {
	table := types.TableSpec{Headers: []string{"A"}, Rows: [][]types.Value{{types.S("x")}}}
	assert.Error(t, WriteTable(os.Stdout, table))
}
