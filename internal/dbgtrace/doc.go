// Package dbgtrace implements the line-tracing and global-variable watch core
// of the vmdb debugger.
//
// A Session sits between the execution engine and the command front end.
// The engine reports every line it is about to run (OnLine) and every write
// to a global variable (OnGlobalWrite); the front end forwards the tokens of
// `trace`/`tr` commands to Dispatch and polls ShouldStop after each
// notification to decide whether to hand control back to the user.
//
// All state is owned by the Session; nothing here is process-global.
package dbgtrace
