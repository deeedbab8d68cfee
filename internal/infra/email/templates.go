package email

import (
	htmltemplate "html/template"
	texttemplate "text/template"
)

var matchesTextTemplate = texttemplate.Must(texttemplate.New("matches.txt").Parse(`Hi {{.Name}}!

Great news! We found {{.Count}} shift(s) that match your preferences:
{{range .Matches}}
{{.Day}} {{.Date}}
Time: {{.Time}}
Description: {{.Description}}
Sign up: {{.Link}}
Matched preference: {{.ShiftType}} on {{.Days}}
{{end}}
Don't wait too long - these shifts fill up quickly!

Best,
Food Coop Shift Notification System
`))

var matchesHTMLTemplate = htmltemplate.Must(htmltemplate.New("matches.html").Parse(`<html>
<body>
  <h2>Hi {{.Name}}!</h2>
  <p>Great news! We found {{.Count}} shift(s) that match your preferences:</p>
{{range .Matches}}
  <div style="border: 1px solid #ccc; margin: 10px 0; padding: 15px; border-radius: 5px;">
    <h3>{{.Day}} {{.Date}}</h3>
    <p><strong>Time:</strong> {{.Time}}</p>
    <p><strong>Description:</strong> {{.Description}}</p>
    <p><strong>Sign up:</strong> <a href="{{.Link}}">Click here to sign up</a></p>
    <p><em>Matched preference: {{.ShiftType}} on {{.Days}}</em></p>
  </div>
{{end}}
  <p>Don't wait too long - these shifts fill up quickly!</p>
  <p>Best,<br>Food Coop Shift Notification System</p>
</body>
</html>
`))
