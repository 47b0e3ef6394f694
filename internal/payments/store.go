package payments

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/ninesib/backend/internal/models"
)

var ErrNotFound = fmt.Errorf("payment not found")

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// ── Payments ─────────────────────────────────────────────

func (s *Store) CreatePayment(p *models.Payment) error {
	err := s.db.QueryRow(
		`INSERT INTO payments (user_id, charge_id, amount_satang, currency, status, description, premium_months)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at, updated_at`,
		p.UserID, p.ChargeID, p.AmountSatang, p.Currency, string(p.Status), p.Description, p.PremiumMonths,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

func (s *Store) GetByID(id int64) (*models.Payment, error) {
	return s.getPayment(`WHERE id = $1`, id)
}

func (s *Store) GetByChargeID(chargeID string) (*models.Payment, error) {
	return s.getPayment(`WHERE charge_id = $1`, chargeID)
}

func (s *Store) getPayment(where string, arg interface{}) (*models.Payment, error) {
	var p models.Payment
	var status string
	err := s.db.QueryRow(
		`SELECT id, user_id, charge_id, amount_satang, currency, status, description, premium_months, slip_url, created_at, updated_at
		 FROM payments `+where, arg,
	).Scan(&p.ID, &p.UserID, &p.ChargeID, &p.AmountSatang, &p.Currency, &status,
		&p.Description, &p.PremiumMonths, &p.SlipURL, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get payment: %w", err)
	}
	p.Status = models.PaymentStatus(status)
	return &p, nil
}

// UpdateStatus sets the payment's status and optionally attaches a slip URL.
func (s *Store) UpdateStatus(id int64, status models.PaymentStatus, slipURL *string) error {
	res, err := s.db.Exec(
		`UPDATE payments SET status = $1, slip_url = COALESCE($2, slip_url), updated_at = NOW() WHERE id = $3`,
		string(status), slipURL, id,
	)
	if err != nil {
		return fmt.Errorf("update payment %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) ListByUser(userID int64) ([]models.Payment, error) {
	return s.listPayments(`WHERE user_id = $1 ORDER BY created_at DESC`, userID)
}

// ListPendingVerification returns manual payments awaiting admin review.
func (s *Store) ListPendingVerification() ([]models.Payment, error) {
	return s.listPayments(`WHERE status = $1 ORDER BY created_at`, string(models.PaymentPendingVerification))
}

func (s *Store) listPayments(tail string, args ...interface{}) ([]models.Payment, error) {
	rows, err := s.db.Query(
		`SELECT id, user_id, charge_id, amount_satang, currency, status, description, premium_months, slip_url, created_at, updated_at
		 FROM payments `+tail, args...,
	)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()

	payments := []models.Payment{}
	for rows.Next() {
		var p models.Payment
		var status string
		err := rows.Scan(&p.ID, &p.UserID, &p.ChargeID, &p.AmountSatang, &p.Currency, &status,
			&p.Description, &p.PremiumMonths, &p.SlipURL, &p.CreatedAt, &p.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		p.Status = models.PaymentStatus(status)
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

// ── Premium State ────────────────────────────────────────

// ActivatePremium extends the user's premium window by months from now, or
// from the current expiry if it is still in the future.
func (s *Store) ActivatePremium(userID int64, months int) error {
	var current *time.Time
	err := s.db.QueryRow(`SELECT premium_expires_at FROM users WHERE id = $1`, userID).Scan(&current)
	if err != nil {
		return fmt.Errorf("read premium expiry for user %d: %w", userID, err)
	}

	base := time.Now()
	if current != nil && current.After(base) {
		base = *current
	}
	expires := base.AddDate(0, months, 0)

	_, err = s.db.Exec(
		`UPDATE users SET is_premium = TRUE, premium_expires_at = $1, updated_at = NOW() WHERE id = $2`,
		expires, userID,
	)
	if err != nil {
		return fmt.Errorf("activate premium for user %d: %w", userID, err)
	}
	return nil
}

func (s *Store) RevokePremium(userID int64) error {
	_, err := s.db.Exec(
		`UPDATE users SET is_premium = FALSE, premium_expires_at = NULL, updated_at = NOW() WHERE id = $1`,
		userID,
	)
	if err != nil {
		return fmt.Errorf("revoke premium for user %d: %w", userID, err)
	}
	return nil
}

// PremiumActive implements history.PremiumChecker.
func (s *Store) PremiumActive(userID int64) (bool, error) {
	var u models.User
	err := s.db.QueryRow(
		`SELECT is_premium, premium_expires_at FROM users WHERE id = $1`, userID,
	).Scan(&u.IsPremium, &u.PremiumExpiresAt)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("premium check for user %d: %w", userID, err)
	}
	return u.PremiumActive(time.Now()), nil
}

func (s *Store) PremiumStatus(userID int64) (models.PremiumStatusResponse, error) {
	var u models.User
	err := s.db.QueryRow(
		`SELECT is_premium, premium_expires_at FROM users WHERE id = $1`, userID,
	).Scan(&u.IsPremium, &u.PremiumExpiresAt)
	if err != nil {
		return models.PremiumStatusResponse{}, fmt.Errorf("premium status for user %d: %w", userID, err)
	}
	return models.PremiumStatusResponse{
		Premium:   u.PremiumActive(time.Now()),
		ExpiresAt: u.PremiumExpiresAt,
	}, nil
}

// IsAdmin implements the admin gate used by import and verification
// endpoints.
func (s *Store) IsAdmin(userID int64) (bool, error) {
	var admin bool
	err := s.db.QueryRow(`SELECT is_admin FROM users WHERE id = $1`, userID).Scan(&admin)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("admin check for user %d: %w", userID, err)
	}
	return admin, nil
}
