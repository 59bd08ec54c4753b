package types

// FileRecord holds one candidate file from the inventory scan.
// Records are created once per scan and only ever mutated by marking
// them removed; a removed record is never resurrected.
type FileRecord struct {
	Path      string
	Size      int64
	Extension string // lowercase extension including the dot; "" when bucketing ignores extensions
	Removed   bool
}

// MarkRemoved flips the record to removed. The transition is one-way.
func (r *FileRecord) MarkRemoved() {
	r.Removed = true
}

// Surviving returns the records not yet marked removed, as a new slice.
func Surviving(records []*FileRecord) []*FileRecord {
	out := make([]*FileRecord, 0, len(records))
	for _, r := range records {
		if !r.Removed {
			out = append(out, r)
		}
	}
	return out
}
