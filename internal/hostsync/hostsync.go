// Package hostsync states the HotSync manager's side of the conduit
// boundary exactly as SPEC_FULL.md §6 describes it: the host is an
// out-of-scope external collaborator, so this package only declares
// the shape cmd/heffalump_conduit drives and the orchestrator consumes
// — it has no behavior of its own beyond bookkeeping the handlers the
// orchestrator registers.
package hostsync

// SessionProperties is the host-provided, opaque session state. In
// production it wraps the C CSyncProperties pointer; in tests it is a
// plain struct.
type SessionProperties interface {
	// SyncDirPath returns the filesystem path the conduit may use for
	// its config, cache, and log files.
	SyncDirPath() string
}

// RecordAttributes carries the on-device record metadata the host
// tracks alongside each record's bytes (dirty/deleted/archived flags,
// category). The conduit only ever writes fresh records, so it always
// supplies the zero value.
type RecordAttributes struct {
	Dirty    bool
	Deleted  bool
	Archived bool
	Category uint8
}

// WriteRecord pairs a raw record's bytes with its attributes, as
// uploaded from the handheld's Writes database.
type WriteRecord struct {
	Bytes      []byte
	Attributes RecordAttributes
}

// Session accumulates what a sync will hand to the host: two DB
// overwrites, a Prefs install, and one DB download-and-sink
// registration (SPEC_FULL.md §4.6 step 8).
type Session struct {
	Properties SessionProperties

	authorDBCreator  string
	authorRecords    [][]byte
	contentDBCreator string
	contentRecords   [][]byte

	prefsID    int
	prefsBytes []byte

	writesDBCreator string
	writesSink      func(records []WriteRecord) error
}

// NewSession wraps host-provided properties in a Session ready for
// handler registration.
func NewSession(props SessionProperties) *Session {
	return &Session{Properties: props}
}

// OverwriteAuthorDB registers the Author DB's full replacement
// contents, under the given type-creator code ("Auth").
func (s *Session) OverwriteAuthorDB(creator string, records [][]byte) {
	s.authorDBCreator = creator
	s.authorRecords = records
}

// OverwriteContentDB registers the Content DB's full replacement
// contents, under the given type-creator code ("Toot").
func (s *Session) OverwriteContentDB(creator string, records [][]byte) {
	s.contentDBCreator = creator
	s.contentRecords = records
}

// InstallPrefs registers the Prefs record to install at the given id.
func (s *Session) InstallPrefs(id int, encoded []byte) {
	s.prefsID = id
	s.prefsBytes = encoded
}

// RegisterWritesSink registers sink to be invoked by the host with the
// handheld's uploaded Writes database records once downloaded.
func (s *Session) RegisterWritesSink(creator string, sink func(records []WriteRecord) error) {
	s.writesDBCreator = creator
	s.writesSink = sink
}

// AuthorDB returns the registered Author DB overwrite, if any.
func (s *Session) AuthorDB() (creator string, records [][]byte) {
	return s.authorDBCreator, s.authorRecords
}

// ContentDB returns the registered Content DB overwrite, if any.
func (s *Session) ContentDB() (creator string, records [][]byte) {
	return s.contentDBCreator, s.contentRecords
}

// Prefs returns the registered Prefs install, if any.
func (s *Session) Prefs() (id int, encoded []byte) {
	return s.prefsID, s.prefsBytes
}

// WritesSink returns the registered sink and its DB creator code, if
// any was registered.
func (s *Session) WritesSink() (creator string, sink func(records []WriteRecord) error) {
	return s.writesDBCreator, s.writesSink
}

// HostRunner is what the real HotSync manager implements: given a
// populated Session, it performs the actual device I/O (writing the
// two DBs, installing Prefs, downloading the Writes DB and invoking
// its sink) and reports a host-level error, if any.
type HostRunner interface {
	Run(session *Session) error
}
