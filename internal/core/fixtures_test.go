package core

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

var createdAt = time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)

// validCells returns a data row that passes both validation tiers.
func validCells() []*Cell {
	return []*Cell{
		{Kind: CellBlank},
		TextCell("Sea View Villa"),
		TextCell("Three bedroom villa by the beach"),
		TextCell("villa"),
		TextCell("12 Beach Road"),
		TextCell("Panaji"),
		TextCell("Goa"),
		TextCell("India"),
		NumberCell(403001),
		NumberCell(15.2993),
		NumberCell(74.124),
		NumberCell(42),
		TextCell("Asha Rao"),
		NumberCell(9876543210),
		TextCell("asha@example.com"),
		NumberCell(2500),
		TextCell("INR"),
		TextCell(`["WiFi","AC"]`),
		TextCell("https://example.com/listings/1"),
		TextCell("active"),
		DateCell(createdAt),
		{Kind: CellBlank},
	}
}

// cellsWith returns validCells with column col replaced.
func cellsWith(col int, c *Cell) []*Cell {
	cells := validCells()
	cells[col] = c
	return cells
}

func validRecord() *FieldRecord {
	return ExtractRow(validCells(), 2)
}

// stubReader returns fixed rows or a fixed error.
type stubReader struct {
	rows [][]*Cell
	err  error
}

func (r stubReader) ReadRows([]byte) ([][]*Cell, error) { return r.rows, r.err }

// fakeAudits records every saved audit state.
type fakeAudits struct {
	mu      sync.Mutex
	audits  map[string]*BatchAudit
	history []AuditState
	failOn  AuditState
}

func newFakeAudits() *fakeAudits {
	return &fakeAudits{audits: make(map[string]*BatchAudit)}
}

func (f *fakeAudits) Save(_ context.Context, a *BatchAudit) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failOn != "" && a.State == f.failOn {
		return errors.New("audit store unavailable")
	}
	c := *a
	c.Outcomes = make(map[int]RowOutcome, len(a.Outcomes))
	for k, v := range a.Outcomes {
		c.Outcomes[k] = v
	}
	f.audits[a.ID] = &c
	f.history = append(f.history, a.State)
	return nil
}

func (f *fakeAudits) FindByID(_ context.Context, id string) (*BatchAudit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.audits[id]
	if !ok {
		return nil, ErrUploadNotFound
	}
	return a, nil
}

func (f *fakeAudits) FindByStatus(_ context.Context, state AuditState) ([]*BatchAudit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*BatchAudit{}
	for _, a := range f.audits {
		if a.State == state {
			out = append(out, a)
		}
	}
	return out, nil
}

// fakeProps stores properties by id.
type fakeProps struct {
	mu      sync.Mutex
	props   map[int64]*Property
	nextID  int64
	saveErr error
}

func newFakeProps() *fakeProps {
	return &fakeProps{props: make(map[int64]*Property), nextID: 1}
}

func (f *fakeProps) Save(ctx context.Context, p *Property) error {
	return f.SaveAll(ctx, []*Property{p})
}

func (f *fakeProps) SaveAll(_ context.Context, props []*Property) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	for _, p := range props {
		if p.ID == nil {
			id := f.nextID
			f.nextID++
			p.ID = &id
		}
		c := *p
		f.props[*p.ID] = &c
	}
	return nil
}

func (f *fakeProps) FindByID(_ context.Context, id int64) (*Property, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.props[id]
	if !ok {
		return nil, ErrPropertyNotFound
	}
	c := *p
	return &c, nil
}

func (f *fakeProps) FindByStatus(_ context.Context, status string) ([]*Property, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*Property{}
	for _, p := range f.props {
		if p.Status == status {
			c := *p
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return *out[i].ID < *out[j].ID })
	return out, nil
}

// readerFunc adapts a function to WorkbookReader.
type readerFunc func([]byte) ([][]*Cell, error)

func (f readerFunc) ReadRows(data []byte) ([][]*Cell, error) { return f(data) }

// ctxAudits refuses writes once the caller's context is done, as a database
// driver would.
type ctxAudits struct {
	*fakeAudits
}

func (c ctxAudits) Save(ctx context.Context, a *BatchAudit) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.fakeAudits.Save(ctx, a)
}
