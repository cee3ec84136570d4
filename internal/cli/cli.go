package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"tirecarstore/internal/events"
	"tirecarstore/internal/export"
	"tirecarstore/internal/models"
	"tirecarstore/internal/store"

	"github.com/rs/zerolog"
)

var (
	ErrUsage           = errors.New("usage")
	ErrBookingNotFound = errors.New("booking not found")
	ErrSlotTaken       = errors.New("slot is already taken")
	ErrNoBackups       = errors.New("backups need the sqlite storage backend")
)

// Backuper snapshots persistent storage.
type Backuper interface {
	PerformBackup(ctx context.Context) (string, error)
	CleanupOldBackups() int
}

var usage = `commands:
  list
  add <date> <time> <service type...>
  update <id> <date> <time> <service type...>
  cancel <id>
  complete <id> [performed action...]
  slot <date> <time> [ignore id]
  export [path]
  backup
` + serviceTypesHint

var serviceTypesHint = "known service types: " + strings.Join(models.ServiceTypes(), ", ")

// Runner plays the part of the booking views: it renders the store and
// turns commands into store actions.
type Runner struct {
	store     *store.Store
	out       io.Writer
	exportDir string
	backups   Backuper
	logger    *zerolog.Logger
}

func NewRunner(s *store.Store, out io.Writer, exportDir string, logger *zerolog.Logger) *Runner {
	return &Runner{store: s, out: out, exportDir: exportDir, logger: logger}
}

// EnableBackups turns on the backup command.
func (r *Runner) EnableBackups(b Backuper) {
	r.backups = b
}

// Notify prints the message carried by every booking event.
func (r *Runner) Notify(bus *events.EventBus) {
	bus.SubscribeAll(func(event *events.Event) error {
		var payload events.BookingEventPayload
		if err := event.Decode(&payload); err != nil {
			return err
		}
		_, err := fmt.Fprintf(r.out, "%s (%s)\n", payload.Message, payload.BookingID)
		return err
	})
}

func (r *Runner) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: %s", ErrUsage, usage)
	}

	cmd, rest := args[0], args[1:]
	r.logger.Debug().Str("command", cmd).Strs("args", rest).Msg("running command")

	switch cmd {
	case "list":
		return r.list()
	case "add":
		if len(rest) < 3 {
			return fmt.Errorf("%w: add <date> <time> <service type...>\n%s", ErrUsage, serviceTypesHint)
		}
		return r.add(ctx, rest[0], rest[1], strings.Join(rest[2:], " "))
	case "update":
		if len(rest) < 4 {
			return fmt.Errorf("%w: update <id> <date> <time> <service type...>\n%s", ErrUsage, serviceTypesHint)
		}
		return r.update(ctx, rest[0], rest[1], rest[2], strings.Join(rest[3:], " "))
	case "cancel":
		if len(rest) != 1 {
			return fmt.Errorf("%w: cancel <id>", ErrUsage)
		}
		return r.checkOutcome(rest[0], r.store.Cancel(ctx, rest[0]))
	case "complete":
		if len(rest) < 1 {
			return fmt.Errorf("%w: complete <id> [performed action...]", ErrUsage)
		}
		return r.checkOutcome(rest[0], r.store.Complete(ctx, rest[0], strings.Join(rest[1:], " ")))
	case "slot":
		if len(rest) < 2 || len(rest) > 3 {
			return fmt.Errorf("%w: slot <date> <time> [ignore id]", ErrUsage)
		}
		ignoreID := ""
		if len(rest) == 3 {
			ignoreID = rest[2]
		}
		return r.slot(rest[0], rest[1], ignoreID)
	case "export":
		path := ""
		if len(rest) > 0 {
			path = rest[0]
		}
		return r.export(path)
	case "backup":
		return r.backup(ctx)
	default:
		return fmt.Errorf("%w: unknown command %q\n%s", ErrUsage, cmd, usage)
	}
}

func (r *Runner) list() error {
	w := tabwriter.NewWriter(r.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDATE\tTIME\tSERVICE\tSTATUS\tDESCRIPTION\tPERFORMED")
	for _, b := range r.store.SortedBookings() {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			b.ID, b.Date, b.Time, b.ServiceType, b.Status, b.Description, b.PerformedAction)
	}
	return w.Flush()
}

func (r *Runner) add(ctx context.Context, date, tm, serviceType string) error {
	if r.store.IsSlotTaken(date, tm, "") {
		return fmt.Errorf("%w: %s %s", ErrSlotTaken, date, tm)
	}
	r.store.Add(ctx, models.BookingDraft{Date: date, Time: tm, ServiceType: serviceType})
	return nil
}

func (r *Runner) update(ctx context.Context, id, date, tm, serviceType string) error {
	booking, ok := r.store.Get(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrBookingNotFound, id)
	}
	if r.store.IsSlotTaken(date, tm, id) {
		return fmt.Errorf("%w: %s %s", ErrSlotTaken, date, tm)
	}

	if booking.ServiceType != serviceType {
		// a stale description would describe the old service
		booking.Description = ""
	}
	booking.Date = date
	booking.Time = tm
	booking.ServiceType = serviceType

	return r.checkOutcome(id, r.store.Update(ctx, booking))
}

func (r *Runner) slot(date, tm, ignoreID string) error {
	state := "free"
	if r.store.IsSlotTaken(date, tm, ignoreID) {
		state = "taken"
	}
	_, err := fmt.Fprintf(r.out, "%s %s is %s\n", date, tm, state)
	return err
}

func (r *Runner) export(path string) error {
	if path == "" {
		path = filepath.Join(r.exportDir, fmt.Sprintf("bookings_%s.xlsx", time.Now().Format("20060102_150405")))
	}
	if err := export.ToExcel(r.store.SortedBookings(), path); err != nil {
		return fmt.Errorf("export bookings: %w", err)
	}
	r.logger.Info().Str("path", path).Msg("bookings exported")
	_, err := fmt.Fprintf(r.out, "Exported to %s\n", path)
	return err
}

func (r *Runner) backup(ctx context.Context) error {
	if r.backups == nil {
		return ErrNoBackups
	}
	path, err := r.backups.PerformBackup(ctx)
	if err != nil {
		return err
	}
	removed := r.backups.CleanupOldBackups()
	_, err = fmt.Fprintf(r.out, "Backup written to %s (%d old backups removed)\n", path, removed)
	return err
}

func (r *Runner) checkOutcome(id string, outcome store.Outcome) error {
	if outcome == store.OutcomeNotFound {
		return fmt.Errorf("%w: %s", ErrBookingNotFound, id)
	}
	return nil
}
