package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	"go.uber.org/zap"

	"sql-bridge/internal/bridge"
	"sql-bridge/internal/config"
	"sql-bridge/internal/db"
	"sql-bridge/internal/secrets"
	"sql-bridge/internal/value"
)

// setOptions replaces the choices of s without firing its OnChanged.
func setOptions(s *widget.Select, options []string, selected string) {
	s.Options = options
	s.Selected = selected
	s.Refresh()
}

func (c *console) serverNames() []string {
	names := make([]string, 0, len(c.cfg.Servers))
	for _, s := range c.cfg.Servers {
		names = append(names, s.Name)
	}
	return names
}

// pickServer loads a saved server into the form.
func (c *console) pickServer(name string) {
	s, ok := c.cfg.ServerByName(name)
	if !ok {
		return
	}
	c.serverID = s.ID
	c.fillForm(s.DB)
	c.status.SetText("Loaded server " + s.Name)
}

func (c *console) fillForm(cfg config.DBConfig) {
	driver := cfg.Driver
	if driver == "" {
		driver = config.DBDriverMySQL
	}
	c.driverSelect.SetSelected(string(driver))
	c.hostEntry.SetText(cfg.Host)
	c.portEntry.SetText("")
	if cfg.Port != nil {
		c.portEntry.SetText(strconv.Itoa(*cfg.Port))
	}
	c.dbEntry.SetText("")
	if cfg.Database != nil {
		c.dbEntry.SetText(*cfg.Database)
	}
	c.userEntry.SetText(cfg.Username)
	c.passEntry.SetText("")
}

// saveServer stores the form under a name, replacing a saved server of the
// same name. A typed password goes to the secrets store.
func (c *console) saveServer() {
	dbCfg, err := c.formConfig()
	if err != nil {
		c.status.SetText(err.Error())
		return
	}
	if c.win == nil {
		return
	}

	name := widget.NewEntry()
	name.SetText(c.serverSelect.Selected)
	items := []*widget.FormItem{widget.NewFormItem("Name", name)}
	dialog.ShowForm("Save server", "Save", "Cancel", items, func(ok bool) {
		if !ok {
			return
		}
		s := config.Server{Name: name.Text, DB: dbCfg}
		if existing, found := c.cfg.ServerByName(name.Text); found {
			s.ID = existing.ID
			err = c.cfg.EditServer(s)
		} else {
			s, err = c.cfg.AddServer(s)
		}
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
		if err := config.Save(c.cfg); err != nil {
			c.status.SetText("Error saving config: " + err.Error())
			return
		}
		c.serverID = s.ID
		setOptions(c.serverSelect, c.serverNames(), strings.TrimSpace(s.Name))
		c.log.Info("server saved", zap.String("server", s.Name), zap.String("id", s.ID))
		c.status.SetText("Saved server " + strings.TrimSpace(s.Name))
	}, c.win)
}

func (c *console) deleteServer() {
	if c.serverID == "" || c.win == nil {
		c.status.SetText("Pick a saved server first")
		return
	}
	name := c.serverSelect.Selected
	dialog.ShowConfirm("Delete server", "Delete "+name+"?", func(ok bool) {
		if !ok {
			return
		}
		if err := c.cfg.DeleteServer(c.serverID); err != nil {
			c.status.SetText(err.Error())
			return
		}
		if err := config.Save(c.cfg); err != nil {
			c.status.SetText("Error saving config: " + err.Error())
			return
		}
		c.serverID = ""
		setOptions(c.serverSelect, c.serverNames(), "")
		c.status.SetText("Deleted server " + name)
	}, c.win)
}

// loadCatalog fills the database and table pickers for the open
// connection. Engines that cannot list databases leave the picker empty.
func (c *console) loadCatalog() {
	go func() {
		ctx := context.Background()
		dbs, dbErr := c.bridge.Databases(ctx)
		tables, tablesErr := c.bridge.Tables(ctx)

		fyne.Do(func() {
			if dbErr != nil {
				c.log.Warn("database list unavailable", zap.Error(dbErr))
			}
			setOptions(c.dbSelect, dbs, c.dbName)
			if tablesErr != nil {
				c.status.SetText(tablesErr.Error())
				return
			}
			setOptions(c.tableSelect, tables, "")
		})
	}()
}

// useDatabase switches the connection to the picked database.
func (c *console) useDatabase(name string) {
	if name == "" || name == c.dbName {
		return
	}
	c.setBusy(true, "Switching to "+name+"...")
	go func() {
		descriptor, err := c.bridge.UseDatabase(context.Background(), name)

		fyne.Do(func() {
			c.setBusy(false, "")
			if err != nil {
				setOptions(c.dbSelect, c.dbSelect.Options, c.dbName)
				c.status.SetText(fmt.Sprintf("%s: %v", bridge.KindOf(err), err))
				return
			}
			c.dbName = name
			c.view = nil
			c.conn.SetText("Connected to " + descriptor)
			c.status.SetText("Using " + name)
			c.loadCatalog()
		})
	}()
}

// browse opens the picked table in the grid; clicking a row edits it.
func (c *console) browse() {
	table := c.tableSelect.Selected
	if table == "" {
		c.status.SetText("Pick a table first")
		return
	}
	c.setBusy(true, "Loading "+table+"...")
	go func() {
		ctx := context.Background()
		cols, err := c.bridge.Columns(ctx, table)
		var rows []value.Row
		if err == nil {
			rows, err = c.bridge.TableRows(ctx, table, 0)
		}

		fyne.Do(func() {
			if err != nil {
				c.setBusy(false, "")
				c.status.SetText(fmt.Sprintf("%s: %v", bridge.KindOf(err), err))
				return
			}
			c.showView(&rowView{table: table, columns: cols, rows: rows})
		})
	}()
}

func (c *console) showView(v *rowView) {
	c.view = v
	c.rows = v.rows
	g := gridFromRows(v.rows)
	if len(v.rows) == 0 {
		g = grid{}
		for _, col := range v.columns {
			g.columns = append(g.columns, col.Name)
		}
	}
	c.setGrid(g)
	c.setBusy(false, "")
	c.status.SetText(fmt.Sprintf("%s: %d rows (limit %d), click a row to edit", v.table, len(v.rows), bridge.DefaultRowLimit))
}

func (c *console) selectCell(id widget.TableCellID) {
	c.table.UnselectAll()
	if c.view == nil || id.Row < 1 || id.Row > len(c.view.rows) {
		return
	}
	c.editRow(c.view.rows[id.Row-1])
}

// rowForm builds one entry per column, prefilled from row when given.
func rowForm(columns []db.Column, row *value.Row) ([]*widget.FormItem, func() map[string]string) {
	entries := make(map[string]*widget.Entry, len(columns))
	items := make([]*widget.FormItem, 0, len(columns))
	for _, col := range columns {
		e := widget.NewEntry()
		if col.Nullable {
			e.SetPlaceHolder("NULL")
		}
		if row != nil {
			if v, ok := row.Get(col.Name); ok {
				e.SetText(cellText(v))
			}
		}
		label := col.Name
		if col.PrimaryKey {
			label += " (key)"
		}
		item := widget.NewFormItem(label, e)
		item.HintText = col.Type
		items = append(items, item)
		entries[col.Name] = e
	}
	texts := func() map[string]string {
		out := make(map[string]string, len(entries))
		for name, e := range entries {
			out[name] = e.Text
		}
		return out
	}
	return items, texts
}

func (c *console) editRow(row value.Row) {
	if c.win == nil {
		return
	}
	v := c.view
	items, texts := rowForm(v.columns, &row)
	var d dialog.Dialog
	deleteBtn := widget.NewButton("Delete row", func() {
		d.Hide()
		dialog.ShowConfirm("Delete row", "Delete this row from "+v.table+"?", func(ok bool) {
			if ok {
				c.applyEdit("Deleted", func(ctx context.Context) (int64, error) {
					return c.bridge.DeleteRow(ctx, v.table, v.columns, row)
				})
			}
		}, c.win)
	})
	form := widget.NewForm(items...)
	form.SubmitText = "Update"
	form.OnSubmit = func() {
		d.Hide()
		after := editedRow(v.columns, row, texts())
		c.applyEdit("Updated", func(ctx context.Context) (int64, error) {
			return c.bridge.UpdateRow(ctx, v.table, v.columns, row, after)
		})
	}
	form.OnCancel = func() { d.Hide() }
	d = dialog.NewCustomWithoutButtons("Edit row in "+v.table, container.NewVBox(form, deleteBtn), c.win)
	d.Resize(fyne.NewSize(480, 0))
	d.Show()
}

func (c *console) insertRow() {
	if c.view == nil || c.win == nil {
		return
	}
	v := c.view
	items, texts := rowForm(v.columns, nil)
	dialog.ShowForm("Insert into "+v.table, "Insert", "Cancel", items, func(ok bool) {
		if !ok {
			return
		}
		row := insertedRow(v.columns, texts())
		c.applyEdit("Inserted", func(ctx context.Context) (int64, error) {
			return c.bridge.InsertRow(ctx, v.table, row)
		})
	}, c.win)
}

// applyEdit runs one row statement and reloads the view.
func (c *console) applyEdit(verb string, run func(context.Context) (int64, error)) {
	v := c.view
	c.setBusy(true, "Saving...")
	go func() {
		ctx := context.Background()
		n, err := run(ctx)
		var rows []value.Row
		if err == nil {
			rows, err = c.bridge.TableRows(ctx, v.table, 0)
		}

		fyne.Do(func() {
			if err != nil {
				c.setBusy(false, "")
				c.status.SetText(fmt.Sprintf("%s: %v", bridge.KindOf(err), err))
				return
			}
			c.showView(&rowView{table: v.table, columns: v.columns, rows: rows})
			c.status.SetText(fmt.Sprintf("%s %d row(s) in %s", verb, n, v.table))
		})
	}()
}
