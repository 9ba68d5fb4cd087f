package demosite

// pages maps paths to fixture HTML. Each page exercises a different part of
// the scan pipeline. The /problems page is generated per request because
// its dead links must carry the server's own host.
var pages = map[string]string{
	// A page the scanner should report as healthy.
	"/healthy": `<!DOCTYPE html>
<html>
<head>
<title>Acme Bakery</title>
<meta name="description" content="Fresh bread daily from the Acme Bakery.">
<meta name="viewport" content="width=device-width, initial-scale=1">
</head>
<body>
<h1>Welcome</h1>
<p>Plain page with nothing wrong.</p>
</body>
</html>`,

	// Contact form without a submit button, in a Turkish variant.
	"/contact": `<!DOCTYPE html>
<html>
<head>
<title>İletişim</title>
<meta name="viewport" content="width=device-width, initial-scale=1">
</head>
<body>
<div id="contact-section">
<h2>Bize Ulaşın</h2>
<form action="/api/contact" method="post">
<label>Mesajınızı buradan gönderebilirsiniz</label>
<input type="text" name="name">
<input type="email" name="email">
<textarea name="message"></textarea>
</form>
</div>
</body>
</html>`,
}

// problemsPage carries dead links, a broken image and missing metadata.
// host is the demo server's own host:port so the absolute links resolve
// back to it.
const problemsPage = `<!DOCTYPE html>
<html>
<head></head>
<body>
<h1>Problem page</h1>
<a href="http://%[1]s/missing-page">Local dead link</a>
<a href="javascript:void(0)">Not a real link</a>
<img src="/img/missing.png" alt="Company logo">
</body>
</html>`
