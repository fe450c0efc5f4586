package file

const (
	columns = `id, name, extension, type, size, owner_id, account_id, users, bucket_file_id, url, created_at, updated_at`

	SelectFiles    = `SELECT ` + columns + ` FROM files`
	SelectFileByID = `SELECT ` + columns + ` FROM files WHERE id = $1::uuid`
	InsertFile     = `
		INSERT INTO files (name, extension, type, size, owner_id, account_id, users, bucket_file_id, url)
		VALUES ($1, $2, $3, $4, $5::uuid, $6, $7, $8, $9)
		RETURNING ` + columns
	UpdateFileName = `
		UPDATE files
		SET name = $1,
		    url = $2,
		    updated_at = now()
		WHERE id = $3::uuid
		RETURNING ` + columns
	UpdateFileUsers = `
		UPDATE files
		SET users = $1,
		    updated_at = now()
		WHERE id = $2::uuid
		RETURNING ` + columns
	DeleteFileByID = `DELETE FROM files WHERE id = $1::uuid`
)
