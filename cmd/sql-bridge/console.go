package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"sql-bridge/internal/bridge"
	"sql-bridge/internal/config"
	"sql-bridge/internal/db"
	"sql-bridge/internal/exec"
	"sql-bridge/internal/export"
	"sql-bridge/internal/logger"
	"sql-bridge/internal/secrets"
	"sql-bridge/internal/value"
)

const (
	minColumnWidth = 60
	maxColumnWidth = 320
	connectTimeout = 15 * time.Second
)

// console is the desktop query window: saved servers, server form, SQL
// editor, result grid and row editor over one bridge connection.
type console struct {
	cfg    config.Config
	bridge *bridge.Bridge
	log    logger.LoggerService
	win    fyne.Window

	serverSelect *widget.Select
	serverID     string
	driverSelect *widget.Select
	hostEntry    *widget.Entry
	portEntry    *widget.Entry
	dbEntry      *widget.Entry
	userEntry    *widget.Entry
	passEntry    *widget.Entry

	connectBtn    *widget.Button
	disconnectBtn *widget.Button
	runBtn        *widget.Button
	tablesBtn     *widget.Button
	exportBtn     *widget.Button
	browseBtn     *widget.Button
	insertBtn     *widget.Button

	dbSelect    *widget.Select
	tableSelect *widget.Select
	// dbName is the database the connection currently points at.
	dbName string

	editor *widget.Entry
	table  *widget.Table
	status *widget.Label
	conn   *widget.Label

	result grid
	// rows is the last row set, for export.
	rows []value.Row
	// view is set while the grid shows a table opened with Browse.
	view *rowView
}

func newConsole(cfg config.Config, log logger.LoggerService) *console {
	return &console{
		cfg:    cfg,
		bridge: bridge.New(log, db.DefaultOptions()),
		log:    log,
	}
}

func (c *console) build() fyne.CanvasObject {
	c.serverSelect = widget.NewSelect(c.serverNames(), c.pickServer)
	c.serverSelect.PlaceHolder = "Saved servers"
	saveServerBtn := widget.NewButtonWithIcon("", theme.DocumentSaveIcon(), c.saveServer)
	deleteServerBtn := widget.NewButtonWithIcon("", theme.DeleteIcon(), c.deleteServer)

	c.driverSelect = widget.NewSelect(config.DBDriverOptions(), func(string) {})
	c.driverSelect.SetSelected(string(c.cfg.DB.Driver))

	c.hostEntry = widget.NewEntry()
	c.hostEntry.SetText(c.cfg.DB.Host)

	c.portEntry = widget.NewEntry()
	c.portEntry.SetPlaceHolder("driver default")
	if c.cfg.DB.Port != nil {
		c.portEntry.SetText(strconv.Itoa(*c.cfg.DB.Port))
	}

	c.dbEntry = widget.NewEntry()
	c.dbEntry.SetPlaceHolder("none")
	if c.cfg.DB.Database != nil {
		c.dbEntry.SetText(*c.cfg.DB.Database)
	}

	c.userEntry = widget.NewEntry()
	c.userEntry.SetText(c.cfg.DB.Username)

	c.passEntry = widget.NewPasswordEntry()
	c.passEntry.SetPlaceHolder("Leave blank to use saved password")

	form := widget.NewForm(
		widget.NewFormItem("Driver", c.driverSelect),
		widget.NewFormItem("Host", c.hostEntry),
		widget.NewFormItem("Port", c.portEntry),
		widget.NewFormItem("Database", c.dbEntry),
		widget.NewFormItem("User", c.userEntry),
		widget.NewFormItem("Password", c.passEntry),
	)

	c.connectBtn = widget.NewButton("Connect", c.connect)
	c.disconnectBtn = widget.NewButton("Disconnect", c.disconnect)
	saveBtn := widget.NewButton("Save", c.save)
	c.conn = widget.NewLabel("Not connected")

	c.editor = widget.NewMultiLineEntry()
	c.editor.SetPlaceHolder("SELECT 1 AS x")
	c.editor.Wrapping = fyne.TextWrapWord

	c.runBtn = widget.NewButtonWithIcon("Run", theme.MediaPlayIcon(), c.run)
	c.tablesBtn = widget.NewButton("Tables", c.showTables)
	c.exportBtn = widget.NewButtonWithIcon("Export", theme.DocumentSaveIcon(), c.exportRows)
	c.exportBtn.Disable()

	c.dbSelect = widget.NewSelect(nil, c.useDatabase)
	c.dbSelect.PlaceHolder = "Database"
	c.tableSelect = widget.NewSelect(nil, func(string) {})
	c.tableSelect.PlaceHolder = "Table"
	c.browseBtn = widget.NewButtonWithIcon("Rows", theme.ListIcon(), c.browse)
	c.insertBtn = widget.NewButtonWithIcon("Insert", theme.ContentAddIcon(), c.insertRow)

	c.table = widget.NewTable(c.tableSize, c.newCell, c.updateCell)
	c.table.OnSelected = c.selectCell
	c.status = widget.NewLabel("")
	c.status.Wrapping = fyne.TextWrapWord

	c.setConnected(false)

	server := container.NewVBox(
		container.NewBorder(nil, nil, nil, container.NewHBox(saveServerBtn, deleteServerBtn), c.serverSelect),
		form,
		container.NewHBox(c.connectBtn, c.disconnectBtn, saveBtn),
		container.NewBorder(nil, nil, nil, c.dbSelect, c.conn),
	)
	actions := container.NewHBox(c.runBtn, c.tablesBtn, c.exportBtn, widget.NewSeparator(), c.tableSelect, c.browseBtn, c.insertBtn)
	editor := container.NewBorder(nil, actions, nil, nil, c.editor)
	split := container.NewVSplit(editor, c.table)
	split.Offset = 0.3

	return container.NewBorder(server, c.status, nil, nil, split)
}

// formConfig reads the server form as typed. Port and database are
// optional.
func (c *console) formConfig() (config.DBConfig, error) {
	cfg := config.DBConfig{
		Driver:   config.DBDriver(c.driverSelect.Selected),
		Host:     strings.TrimSpace(c.hostEntry.Text),
		Username: strings.TrimSpace(c.userEntry.Text),
		Password: c.passEntry.Text,
	}
	if s := strings.TrimSpace(c.portEntry.Text); s != "" {
		p, err := strconv.Atoi(s)
		if err != nil || p <= 0 || p > 65535 {
			return config.DBConfig{}, errors.New("invalid DB port")
		}
		cfg.Port = config.IntPtr(p)
	}
	if s := strings.TrimSpace(c.dbEntry.Text); s != "" {
		cfg.Database = config.StringPtr(s)
	}
	return cfg, nil
}

// dbConfig is formConfig with an empty password replaced by the one saved
// for the server.
func (c *console) dbConfig() (config.DBConfig, error) {
	cfg, err := c.formConfig()
	if err != nil {
		return config.DBConfig{}, err
	}
	password, err := secrets.DBPassword(cfg)
	if err != nil {
		return config.DBConfig{}, fmt.Errorf("failed to load password: %w", err)
	}
	cfg.Password = password
	return cfg, nil
}

func (c *console) connect() {
	cfg, err := c.dbConfig()
	if err != nil {
		c.status.SetText(err.Error())
		return
	}

	c.setBusy(true, "Connecting...")
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		defer cancel()
		err := c.bridge.Connect(ctx, cfg)
		descriptor, _ := c.bridge.Descriptor()

		fyne.Do(func() {
			c.setBusy(false, "")
			if err != nil {
				c.status.SetText("Connection failed: " + err.Error())
				return
			}
			c.setConnected(true)
			c.conn.SetText("Connected to " + descriptor)
			c.status.SetText("Connection OK")
			c.dbName = ""
			if cfg.Database != nil {
				c.dbName = *cfg.Database
			}
			c.loadCatalog()
		})
	}()
}

func (c *console) disconnect() {
	c.setBusy(true, "Disconnecting...")
	go func() {
		err := c.bridge.Close()

		fyne.Do(func() {
			c.setBusy(false, "")
			if err != nil {
				c.status.SetText(err.Error())
				return
			}
			c.view = nil
			c.dbName = ""
			setOptions(c.dbSelect, nil, "")
			setOptions(c.tableSelect, nil, "")
			c.conn.SetText("Not connected")
			c.status.SetText("Disconnected")
		})
	}()
}

func (c *console) run() {
	query := strings.TrimSpace(c.editor.SelectedText())
	if query == "" {
		query = strings.TrimSpace(c.editor.Text)
	}
	if query == "" {
		c.status.SetText("Enter a SQL statement")
		return
	}

	c.setBusy(true, "Running...")
	go func() {
		start := time.Now()
		out, err := c.bridge.Execute(context.Background(), trimStatement(query))
		elapsed := time.Since(start).Truncate(time.Millisecond)

		fyne.Do(func() {
			c.setBusy(false, "")
			if err != nil {
				c.status.SetText(fmt.Sprintf("%s: %v", bridge.KindOf(err), err))
				return
			}
			c.showOutcome(out, elapsed)
		})
	}()
}

func (c *console) showTables() {
	c.setBusy(true, "Loading tables...")
	go func() {
		names, err := c.bridge.Tables(context.Background())

		fyne.Do(func() {
			c.setBusy(false, "")
			if err != nil {
				c.status.SetText(err.Error())
				return
			}
			g := grid{columns: []string{"table"}}
			for _, n := range names {
				g.cells = append(g.cells, []string{n})
			}
			setOptions(c.tableSelect, names, c.tableSelect.Selected)
			c.rows = nil
			c.view = nil
			c.setExportable()
			c.setGrid(g)
			c.status.SetText(fmt.Sprintf("%d tables", len(names)))
		})
	}()
}

func (c *console) showOutcome(out exec.Outcome, elapsed time.Duration) {
	c.rows = nil
	c.view = nil
	if out.Kind == exec.OutcomeRowSet {
		c.rows = out.Rows
		c.setGrid(gridFromRows(out.Rows))
	} else {
		c.setGrid(grid{})
	}
	c.setBusy(false, "")
	c.status.SetText(fmt.Sprintf("%s in %s", summarize(out), elapsed))
}

// exportRows saves the last row set as an .xlsx workbook.
func (c *console) exportRows() {
	if c.rows == nil || c.win == nil {
		return
	}
	rows := c.rows
	save := dialog.NewFileSave(func(w fyne.URIWriteCloser, err error) {
		if err != nil {
			c.status.SetText(err.Error())
			return
		}
		if w == nil {
			return
		}
		path := w.URI().Path()
		_ = w.Close()

		if err := export.XLSX(path, rows); err != nil {
			c.log.Error("export failed", err)
			c.status.SetText("Export failed: " + err.Error())
			return
		}
		c.status.SetText(fmt.Sprintf("Exported %d rows to %s", len(rows), path))
	}, c.win)
	save.SetFileName("result.xlsx")
	save.Show()
}

func (c *console) save() {
	dbCfg, err := c.dbConfig()
	if err != nil {
		c.status.SetText(err.Error())
		return
	}

	if c.passEntry.Text != "" {
		key := secrets.DBPasswordKey(string(dbCfg.Driver), dbCfg.Host)
		if err := secrets.Set(key, []byte(c.passEntry.Text)); err != nil {
			c.status.SetText("failed to save password: " + err.Error())
			return
		}
	}

	c.cfg.DB = dbCfg
	if err := config.Save(c.cfg); err != nil {
		c.status.SetText("Error saving config: " + err.Error())
		return
	}
	c.log.Info("config saved")
	c.status.SetText("Saved.")
}

func (c *console) setConnected(connected bool) {
	if connected {
		c.connectBtn.Disable()
		c.disconnectBtn.Enable()
		c.runBtn.Enable()
		c.tablesBtn.Enable()
		c.dbSelect.Enable()
		c.tableSelect.Enable()
		c.browseBtn.Enable()
		c.setExportable()
		c.setInsertable()
		return
	}
	c.connectBtn.Enable()
	c.disconnectBtn.Disable()
	c.runBtn.Disable()
	c.tablesBtn.Disable()
	c.dbSelect.Disable()
	c.tableSelect.Disable()
	c.browseBtn.Disable()
	c.insertBtn.Disable()
	c.setExportable()
}

func (c *console) setInsertable() {
	if c.view != nil {
		c.insertBtn.Enable()
		return
	}
	c.insertBtn.Disable()
}

func (c *console) setExportable() {
	if c.rows != nil {
		c.exportBtn.Enable()
		return
	}
	c.exportBtn.Disable()
}

func (c *console) setBusy(busy bool, msg string) {
	if busy {
		c.connectBtn.Disable()
		c.disconnectBtn.Disable()
		c.runBtn.Disable()
		c.tablesBtn.Disable()
		c.exportBtn.Disable()
		c.dbSelect.Disable()
		c.tableSelect.Disable()
		c.browseBtn.Disable()
		c.insertBtn.Disable()
		c.status.SetText(msg)
		return
	}
	c.setConnected(c.bridge.Connected())
}

func (c *console) setGrid(g grid) {
	c.result = g
	for i := range g.columns {
		c.table.SetColumnWidth(i, c.columnWidth(i))
	}
	c.table.Refresh()
}

func (c *console) columnWidth(col int) float32 {
	text := strings.Repeat("W", c.result.width(col))
	w := fyne.MeasureText(text, theme.TextSize(), fyne.TextStyle{}).Width + 2*theme.Padding()
	return min(max(w, minColumnWidth), maxColumnWidth)
}

// The header is table row 0.
func (c *console) tableSize() (int, int) {
	if len(c.result.columns) == 0 {
		return 0, 0
	}
	return len(c.result.cells) + 1, len(c.result.columns)
}

func (c *console) newCell() fyne.CanvasObject {
	l := widget.NewLabel("")
	l.Truncation = fyne.TextTruncateEllipsis
	return l
}

func (c *console) updateCell(id widget.TableCellID, obj fyne.CanvasObject) {
	l := obj.(*widget.Label)
	if id.Row == 0 {
		l.TextStyle = fyne.TextStyle{Bold: true}
		l.SetText(c.result.columns[id.Col])
		return
	}
	l.TextStyle = fyne.TextStyle{}
	l.SetText(c.result.cells[id.Row-1][id.Col])
}
