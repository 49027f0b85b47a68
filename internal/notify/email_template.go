package notify

const emailHTMLTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>{{.Entry.CompanyName}} – {{.Entry.Title}}</title>
  <style>
    body {
      margin: 0;
      padding: 24px;
      background-color: #f3f4f6;
      font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
      color: #111827;
      line-height: 1.5;
    }

    .container {
      max-width: 640px;
      margin: 0 auto;
      background: #ffffff;
      border-radius: 8px;
      border: 1px solid #e5e7eb;
      overflow: hidden;
    }

    .header {
      padding: 20px 24px;
      background: linear-gradient(135deg, #1f3a5f 0%, #2b2f36 100%);
      color: #ffffff;
    }

    .ticker {
      font-size: 24px;
      font-weight: 700;
      letter-spacing: 0.05em;
      margin-bottom: 4px;
    }

    .title {
      font-size: 15px;
      opacity: 0.9;
    }


    .section {
      padding: 16px 24px;
      border-top: 1px solid #f3f4f6;
    }

    .section-title {
      font-size: 11px;
      font-weight: 700;
      color: #6b7280;
      text-transform: uppercase;
      letter-spacing: 0.1em;
      margin-bottom: 12px;
    }

    .meta-grid {
      display: table;
      width: 100%;
      font-size: 14px;
    }

    .meta-row {
      display: table-row;
    }

    .meta-label {
      display: table-cell;
      padding: 6px 16px 6px 0;
      color: #6b7280;
      font-weight: 500;
      white-space: nowrap;
      width: 100px;
    }

    .meta-value {
      display: table-cell;
      padding: 6px 0;
      color: #111827;
    }



    .summary-list {
      margin: 0;
      padding-left: 20px;
      font-size: 14px;
    }

    .summary-list li {
      margin-bottom: 8px;
      padding-left: 4px;
    }



    .cta-button {
      display: inline-block;
      margin-top: 12px;
      padding: 10px 20px;
      font-size: 14px;
      font-weight: 600;
      color: #ffffff !important;
      background: #1f3a5f;
      border-radius: 6px;
      text-decoration: none;
    }

    .footer {
      padding: 16px 24px;
      font-size: 12px;
      color: #9ca3af;
      text-align: center;
      background: #f9fafb;
      border-top: 1px solid #f3f4f6;
    }

    a {
      color: #0b3d91;
      text-decoration: none;
    }
  </style>
</head>
<body>
  <div class="container">
    <div class="header">
      <div class="ticker">{{.Entry.StockCode}} {{.Entry.CompanyName}}</div>
      <div class="title">{{.Entry.Title}}</div>
    </div>

    <div class="section">
      <div class="section-title">Disclosure Details</div>
      <div class="meta-grid">
        <div class="meta-row">
          <div class="meta-label">Time</div>
          <div class="meta-value">{{.Entry.Time}}</div>
        </div>
        {{if .Entry.FileURL}}
        <div class="meta-row">
          <div class="meta-label">Document</div>
          <div class="meta-value"><a href="{{.Entry.FileURL}}" target="_blank" rel="noopener">{{.Entry.FileURL}}</a></div>
        </div>
        {{end}}
      </div>
      <a href="{{.Entry.PageURL}}" class="cta-button" target="_blank" rel="noopener">
        View Disclosure →
      </a>
    </div>

    {{if .Summary}}
    <div class="section">
      <div class="section-title">AI Summary</div>
      <ul class="summary-list">
        {{range .Summary}}
        <li>{{.}}</li>
        {{end}}
      </ul>
    </div>
    {{end}}

    <div class="footer">
      Generated by <a href="https://github.com/CRaLFa/nikkei-bot" target="_blank" rel="noopener">nikkei-bot</a>
    </div>
  </div>
</body>
</html>`
