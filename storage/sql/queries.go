package sql

const (
	userBySessionQuery = `
SELECT u.id, u.email, u.role, u.plan, u.active, u.expires_at
FROM sessions s
         JOIN users u ON u.id = s.user_id
WHERE s.id = $1
  AND s.expires_at > $2`

	adjustmentsQuery = `
SELECT bcv_pct, parallel_pct, usdt_cop_pct, usdt_ves_pct
FROM user_settings
WHERE user_id = $1`

	saveAdjustmentsQuery = `
INSERT INTO user_settings (user_id, bcv_pct, parallel_pct, usdt_cop_pct, usdt_ves_pct, updated_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (user_id) DO UPDATE SET bcv_pct      = EXCLUDED.bcv_pct,
                                    parallel_pct = EXCLUDED.parallel_pct,
                                    usdt_cop_pct = EXCLUDED.usdt_cop_pct,
                                    usdt_ves_pct = EXCLUDED.usdt_ves_pct,
                                    updated_at   = EXCLUDED.updated_at`
)
