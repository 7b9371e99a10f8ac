// Package jaho converts HTML to PDF by driving a headless Chrome browser
// over the DevTools protocol.
//
// # One-shot conversion
//
// The package-level functions spawn a browser scoped to the call and
// guarantee it is terminated on every exit path:
//
//	res, err := jaho.Convert(ctx, "<h1>Hello</h1>", nil)
//
// Empty input fails with [ErrNoContent] before any browser is started.
//
// # Reusing the browser
//
// For repeated conversions create a [Converter], which keeps one browser
// alive and runs each conversion in its own tab:
//
//	c, err := jaho.NewConverter()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer c.Close()
//
//	res, err := c.Convert(ctx, "<h1>Hello</h1>", nil)
//	res, err  = c.ConvertURL(ctx, "https://example.com", nil)
//	res, err  = c.ConvertFile(ctx, "report.html", nil)
//	res, err  = c.ConvertMarkdown(ctx, "# Hello", nil)
//
// # Configuring a conversion
//
// [ConvertConfig] controls one conversion: export options, script
// execution, the load-completion condition, the page-load timeout,
// header/footer markup injected into the document, and an [PageHook] run
// against the live page before export:
//
//	res, err := c.Convert(ctx, html, &jaho.ConvertConfig{
//	    Page:       &jaho.PageOptions{Size: jaho.Letter, Orientation: jaho.Landscape},
//	    WaitUntil:  jaho.WaitLoad,
//	    FooterHTML: `<div class="stamp">internal</div>`,
//	    AfterLoad: func(ctx context.Context) error {
//	        return chromedp.Click("#expand", chromedp.ByID).Do(ctx)
//	    },
//	})
//
// Browser launch concerns are functional [Option]s on [NewConverter] and the
// one-shot functions: [WithChromePath], [WithNoSandbox], [WithTimeout],
// [WithAutoDownload], [WithBrowserFlag].
//
// A [Result] gives flexible access to the generated PDF:
//
//	res.Bytes()                       // []byte
//	res.Base64()                      // base64 string (RFC 4648)
//	res.Reader()                      // *bytes.Reader
//	res.WriteToFile("out.pdf", 0o644) // write to disk
//	res.Text()                        // rendered plain text
//
// [Result.Text] and [ExtractText] read the generated PDF back with a small
// pure-Go reader, which is how the end-to-end tests verify rendered output.
package jaho
