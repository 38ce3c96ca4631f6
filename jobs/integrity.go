package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"math"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/parcelops/backoffice/internal/observability"
)

// IntegrityChecker sweeps the journal and the party ledgers for drift. It
// never mutates anything; findings are logged and exported as gauges so an
// operator can chase them down.
type IntegrityChecker struct {
	db      *pgxpool.Pool
	logger  *slog.Logger
	metrics *observability.Metrics
}

func NewIntegrityChecker(db *pgxpool.Pool, logger *slog.Logger, metrics *observability.Metrics) *IntegrityChecker {
	return &IntegrityChecker{db: db, logger: logger, metrics: metrics}
}

// Handle processes TaskLedgerIntegrity tasks.
func (c *IntegrityChecker) Handle(ctx context.Context, t *asynq.Task) error {
	var payload LedgerIntegrityPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	return c.Run(ctx, payload.Since)
}

// Run executes both drift checks. A non-zero since narrows the sweep to
// entries and owners touched on or after that instant.
func (c *IntegrityChecker) Run(ctx context.Context, since time.Time) error {
	entryDrift, unbalanced, err := c.entryDrift(ctx, since)
	if err != nil {
		return err
	}
	c.metrics.SetIntegrityDrift("journal_entries", unbalanced)
	if unbalanced > 0 {
		c.logger.Warn("unbalanced journal entries found",
			slog.Int("entries", unbalanced),
			slog.Float64("total_drift", entryDrift))
	}

	historyDrift, mismatched, err := c.historyDrift(ctx, since)
	if err != nil {
		return err
	}
	c.metrics.SetIntegrityDrift("ledger_history", mismatched)
	if mismatched > 0 {
		c.logger.Warn("ledger balances diverge from transaction history",
			slog.Int("owners", mismatched),
			slog.Float64("total_drift", historyDrift))
	}

	c.logger.Info("ledger integrity sweep finished",
		slog.Int("unbalanced_entries", unbalanced),
		slog.Int("mismatched_owners", mismatched))
	return nil
}

// sinceArg maps a zero time to NULL so the drift queries skip the bound.
func sinceArg(since time.Time) any {
	if since.IsZero() {
		return nil
	}
	return since
}

// entryDrift sums |total_debit - total_credit| over entries whose lines do
// not balance beyond the rounding tolerance.
func (c *IntegrityChecker) entryDrift(ctx context.Context, since time.Time) (float64, int, error) {
	rows, err := c.db.Query(ctx, `SELECT e.id, e.number, ABS(COALESCE(SUM(l.debit),0) - COALESCE(SUM(l.credit),0)) AS drift
FROM journal_entries e JOIN journal_lines l ON l.entry_id = e.id
WHERE ($1::timestamptz IS NULL OR e.created_at >= $1)
GROUP BY e.id, e.number
HAVING ABS(COALESCE(SUM(l.debit),0) - COALESCE(SUM(l.credit),0)) > 0.01`, sinceArg(since))
	if err != nil {
		return 0, 0, err
	}
	defer rows.Close()
	var total float64
	var count int
	for rows.Next() {
		var id int64
		var number string
		var drift float64
		if err := rows.Scan(&id, &number, &drift); err != nil {
			return 0, 0, err
		}
		c.logger.Warn("unbalanced entry", slog.Int64("entry_id", id), slog.String("number", number), slog.Float64("drift", drift))
		total += drift
		count++
	}
	return total, count, rows.Err()
}

// historyDrift compares each owner's stored balance against the newest
// snapshot in its transaction history. With a since bound only owners that
// have posted on or after it are examined; their newest row is still the
// overall newest because history is append-only.
func (c *IntegrityChecker) historyDrift(ctx context.Context, since time.Time) (float64, int, error) {
	rows, err := c.db.Query(ctx, `SELECT t.owner_type, t.owner_id, t.new_balance, b.current_balance
FROM (
    SELECT DISTINCT ON (owner_type, owner_id) owner_type, owner_id, new_balance
    FROM ledger_transactions
    WHERE ($1::timestamptz IS NULL OR created_at >= $1)
    ORDER BY owner_type, owner_id, id DESC
) t
JOIN (
    SELECT 'CUSTOMER' AS owner_type, id, current_balance FROM customers
    UNION ALL SELECT 'VENDOR', id, current_balance FROM vendors
    UNION ALL SELECT 'COMPANY', id, current_balance FROM company_accounts
) b ON b.owner_type = t.owner_type AND b.id = t.owner_id
WHERE ABS(t.new_balance - b.current_balance) > 0.01`, sinceArg(since))
	if err != nil {
		return 0, 0, err
	}
	defer rows.Close()
	var total float64
	var count int
	for rows.Next() {
		var ownerType string
		var ownerID int64
		var snapshot, stored float64
		if err := rows.Scan(&ownerType, &ownerID, &snapshot, &stored); err != nil {
			return 0, 0, err
		}
		drift := math.Abs(snapshot - stored)
		c.logger.Warn("ledger balance drift",
			slog.String("owner_type", ownerType),
			slog.Int64("owner_id", ownerID),
			slog.Float64("history", snapshot),
			slog.Float64("stored", stored))
		total += drift
		count++
	}
	return total, count, rows.Err()
}
