// Package viewstate derives the client's view state from the server's post
// list.
//
// # Overview
//
// The Controller holds three structures, all keyed by Key{Kind, ID}:
//
//   - the posts (with nested comments) from the last successful fetch
//   - a visibility flag per post and comment, telling the UI whether the
//     inline edit form is open
//   - an EditForm per post and comment, seeded with the entity's link
//
// # Full Refresh
//
// There is no incremental patching. Reload fetches every post and replaces all
// three structures at once; entities missing from the response simply vanish
// with their forms and flags. Mutations (SubmitAdd, SubmitEdit, SubmitDelete)
// call the server and, only on success, run exactly one Reload:
//
//	SubmitEdit()
//	  ├─> client.Update()     failure: return error, state untouched
//	  └─> Reload()            success: new Snapshot installed
//
// # Lookups
//
// Lookups never fail. IsFormVisible reads an unknown key as hidden and
// LookupEditForm reports a missing form through its boolean result. Post and
// comment ids are separate namespaces: a comment lookup never returns the form
// of a post that happens to share its numeric id.
//
// # Concurrency
//
// State is guarded by an RWMutex so the UI goroutine and background reloads
// can share one Controller. Submissions are serialized, and when reloads
// overlap only the most recently started one is installed.
package viewstate
