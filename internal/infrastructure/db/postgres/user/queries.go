package user

const (
	columns = `id, account_id, email, full_name, avatar, created_at, updated_at`

	SelectUserByID        = `SELECT ` + columns + ` FROM users WHERE id = $1::uuid`
	SelectUserByEmail     = `SELECT ` + columns + ` FROM users WHERE lower(email) = lower($1)`
	SelectUserByAccountID = `SELECT ` + columns + ` FROM users WHERE account_id = $1`
	InsertUser            = `
		INSERT INTO users (account_id, email, full_name, avatar)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + columns
)
