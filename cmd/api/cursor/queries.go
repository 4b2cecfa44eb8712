package cursor

const (
	selectByKey = "SELECT last_id, last_date FROM fio_cursors WHERE key=$1;"
	upsert      = "INSERT INTO fio_cursors(key, last_id, last_date, modified_at) VALUES($1,$2,$3,$4) ON CONFLICT (key) DO UPDATE SET last_id=EXCLUDED.last_id, last_date=EXCLUDED.last_date, modified_at=EXCLUDED.modified_at;"
)
