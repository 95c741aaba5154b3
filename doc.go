// Package passcheck verifies the tamper-evident fields that the submission
// client seals into an assignment PDF.
//
// The client stores encrypted entries DataCheckA..DataCheckH in the PDF
// info dictionary next to the ordinary author and date entries, and
// attaches the project as a zip file on the first page. A Checker
// recovers the encrypted values, cross-checks them against the visible
// metadata and the attachment's SHA-256, and optionally matches the
// document to the server's submission log.
//
// Basic usage:
//
//	mk, err := passcheck.LoadMasterKey("master.key")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	events, err := passcheck.LoadEvents("uploads.tsv")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	checker, err := passcheck.New(
//	    passcheck.WithMasterKey(mk),
//	    passcheck.WithEvents(events),
//	    passcheck.WithOpener(pdfmeta.Opener{}),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	records, err := checker.CheckAll(ctx, files)
//	for _, rec := range records {
//	    fmt.Println(rec.File, rec.Codes())
//	}
//
// Nothing about a single document is returned as an error: problems are
// recorded as Diagnostics on its Record, in the order the checks ran, and
// operator-facing warnings go to the configured Warner.
package passcheck
