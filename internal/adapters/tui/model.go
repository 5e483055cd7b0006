// Package tui is the live shop floor view: one manufacturing order, its work
// orders with running durations, and key bindings for the execution actions.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/example/shopfloor/internal/app"
	"github.com/example/shopfloor/internal/apperr"
	"github.com/example/shopfloor/internal/core/workorder"
	"github.com/example/shopfloor/internal/ports/primary"
)

// updateMsg carries one duration refresh.
type updateMsg app.DurationUpdate

// watchClosedMsg is sent when the update stream ends.
type watchClosedMsg struct{}

// actionMsg reports the outcome of an execution action.
type actionMsg struct {
	verb   string
	result *primary.ExecutionResult
	err    error
}

// Model is the bubbletea model of the live view.
type Model struct {
	ctx     context.Context
	exec    primary.ExecutionService
	updates <-chan app.DurationUpdate

	order    *primary.ManufacturingOrder
	cursor   int
	displays map[string]workorder.Display
	busy     bool
	status   string
	err      error
	width    int
}

// NewModel creates the view for order, fed by updates.
func NewModel(ctx context.Context, exec primary.ExecutionService, order *primary.ManufacturingOrder, updates <-chan app.DurationUpdate) Model {
	return Model{
		ctx:      ctx,
		exec:     exec,
		updates:  updates,
		order:    order,
		displays: make(map[string]workorder.Display),
	}
}

// Init starts listening for duration updates.
func (m Model) Init() tea.Cmd {
	return waitForUpdate(m.updates)
}

func waitForUpdate(updates <-chan app.DurationUpdate) tea.Cmd {
	if updates == nil {
		return nil
	}
	return func() tea.Msg {
		u, ok := <-updates
		if !ok {
			return watchClosedMsg{}
		}
		return updateMsg(u)
	}
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case updateMsg:
		m.displays = msg.Displays
		return m, waitForUpdate(m.updates)

	case watchClosedMsg:
		return m, tea.Quit

	case actionMsg:
		m.busy = false
		if msg.result != nil && msg.result.Order != nil {
			m.order = msg.result.Order
		}
		if msg.err != nil {
			m.err = msg.err
			m.status = ""
			return m, nil
		}
		m.err = nil
		m.status = describe(msg.verb, msg.result)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case "down", "j":
		if m.cursor < len(m.order.WorkOrders)-1 {
			m.cursor++
		}
		return m, nil
	}

	if m.busy {
		return m, nil
	}

	var verb string
	var run func(ctx context.Context) (*primary.ExecutionResult, error)
	wo := m.selected()

	switch msg.String() {
	case "s":
		if wo == nil {
			return m, nil
		}
		verb = "started"
		run = func(ctx context.Context) (*primary.ExecutionResult, error) {
			return m.exec.StartWorkOrder(ctx, primary.StartWorkOrderRequest{WorkOrderID: wo.ID})
		}
	case "p":
		if wo == nil {
			return m, nil
		}
		verb = "paused"
		run = func(ctx context.Context) (*primary.ExecutionResult, error) {
			return m.exec.PauseWorkOrder(ctx, primary.WorkOrderActionRequest{WorkOrderID: wo.ID})
		}
	case "r":
		if wo == nil {
			return m, nil
		}
		verb = "resumed"
		run = func(ctx context.Context) (*primary.ExecutionResult, error) {
			return m.exec.ResumeWorkOrder(ctx, primary.WorkOrderActionRequest{WorkOrderID: wo.ID})
		}
	case "c":
		if wo == nil {
			return m, nil
		}
		verb = "completed"
		run = func(ctx context.Context) (*primary.ExecutionResult, error) {
			return m.exec.CompleteWorkOrder(ctx, primary.CompleteWorkOrderRequest{WorkOrderID: wo.ID})
		}
	case "m":
		verb = "order completed"
		orderID := m.order.ID
		run = func(ctx context.Context) (*primary.ExecutionResult, error) {
			return m.exec.CompleteManufacturingOrder(ctx, primary.CompleteOrderRequest{OrderID: orderID})
		}
	case "g":
		verb = "reloaded"
		orderID := m.order.ID
		run = func(ctx context.Context) (*primary.ExecutionResult, error) {
			order, err := m.exec.LoadOrder(ctx, orderID)
			if err != nil {
				return nil, err
			}
			return &primary.ExecutionResult{Order: order}, nil
		}
	default:
		return m, nil
	}

	m.busy = true
	m.status = "working..."
	ctx := m.ctx
	return m, func() tea.Msg {
		res, err := run(ctx)
		return actionMsg{verb: verb, result: res, err: err}
	}
}

func (m Model) selected() *primary.WorkOrder {
	if m.cursor < 0 || m.cursor >= len(m.order.WorkOrders) {
		return nil
	}
	return m.order.WorkOrders[m.cursor]
}

// View renders the order and its work orders.
func (m Model) View() string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render(fmt.Sprintf("%s  %s × %d", m.order.ID, m.order.ProductID, m.order.Quantity)))
	sb.WriteString(fmt.Sprintf("  %s  %.0f%%\n\n", m.order.Status, m.order.Progress()))

	sb.WriteString(headerStyle.Render(fmt.Sprintf("  %-10s %-20s %-12s %-10s %s", "WO", "NAME", "STATUS", "OPERATOR", "ELAPSED")))
	sb.WriteString("\n")
	for i, wo := range m.order.WorkOrders {
		line := fmt.Sprintf("%-10s %-20s %s %-10s %s",
			wo.ID, truncate(wo.Name, 20), statusBadge(wo.Status), wo.OperatorID, m.elapsed(wo))
		if m.exec.InFlight(wo.ID) {
			line += mutedStyle.Render("  …")
		}
		if i == m.cursor {
			sb.WriteString(selectedStyle.Render("> " + line))
		} else {
			sb.WriteString("  " + line)
		}
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	switch {
	case m.err != nil:
		sb.WriteString(errorStyle.Render(errorLine(m.err)))
	case m.status != "":
		sb.WriteString(okStyle.Render(m.status))
	}
	sb.WriteString("\n")
	sb.WriteString(helpStyle.Render("↑/↓ select • s start • p pause • r resume • c complete • m complete order • g reload • q quit"))
	sb.WriteString("\n")
	return sb.String()
}

func (m Model) elapsed(wo *primary.WorkOrder) string {
	d, ok := m.displays[wo.ID]
	if !ok {
		return mutedStyle.Render("--:--:--")
	}
	if d.Live {
		return liveStyle.Render(d.String())
	}
	return d.String()
}

func describe(verb string, res *primary.ExecutionResult) string {
	if res == nil {
		return ""
	}
	if res.WorkOrder == nil {
		return fmt.Sprintf("%s %s (%s)", res.Order.ID, verb, res.Order.Status)
	}
	msg := fmt.Sprintf("%s %s", res.WorkOrder.ID, verb)
	if res.Receipt != nil {
		msg += fmt.Sprintf(" • %s completed, produced %d", res.Order.ID, res.Receipt.ProducedQuantity)
	}
	return msg
}

func errorLine(err error) string {
	switch apperr.KindOf(err) {
	case apperr.KindInvalidTransition:
		return "not allowed: " + err.Error()
	case apperr.KindActionInFlight:
		return "busy: " + err.Error()
	case apperr.KindValidation:
		return "rejected: " + err.Error()
	default:
		return "error: " + err.Error()
	}
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n-1] + "…"
	}
	return s
}

// Run loads order, starts the duration watch over its work orders and runs
// the view until the user quits or ctx is done.
func Run(ctx context.Context, exec primary.ExecutionService, watcher *app.DurationWatcher, orderID string, opts ...tea.ProgramOption) error {
	order, err := exec.LoadOrder(ctx, orderID)
	if err != nil {
		return err
	}

	ids := make([]string, len(order.WorkOrders))
	for i, wo := range order.WorkOrders {
		ids[i] = wo.ID
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	updates, stop := watcher.Watch(ctx, ids...)
	defer stop()

	model := NewModel(ctx, exec, order, updates)
	model.displays = watcher.Snapshot(time.Now(), ids...).Displays

	opts = append([]tea.ProgramOption{tea.WithContext(ctx)}, opts...)
	_, err = tea.NewProgram(model, opts...).Run()
	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("failed to run live view: %w", err)
	}
	return nil
}
