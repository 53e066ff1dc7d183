package database

// Open returns the BehaviorStore selected by opts.Type
func Open(opts Options) (BehaviorStore, error) {
	if opts.Type == TypeMemory {
		return NewMemoryStore(), nil
	}
	db, err := Connect(opts)
	if err != nil {
		return nil, storageErr("open behavior store", err)
	}
	return NewSQLStore(db), nil
}
