package api

import "html/template"

var adminTemplate = template.Must(template.New("admin").Parse(`<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<title>Overzicht Bestellingen</title>
</head>
<body>
<h2>Overzicht Bestellingen</h2>
<table border="1">
	<tr>
		<th>Order ID</th><th>Type</th><th>Kiosk</th><th>Item</th><th>Aantal</th>
		<th>Opmerking</th><th>Tijd</th><th>Status</th>
	</tr>
	{{- range .}}
	<tr>
		<td>{{.OrderID}}</td>
		<td>{{.Type}}</td>
		<td>{{.Kiosk}}</td>
		<td>{{.Item}}</td>
		<td>{{.Quantity}}</td>
		<td>{{.Opmerking}}</td>
		<td>{{.Time}}</td>
		<td>{{.Status}}</td>
	</tr>
	{{- end}}
</table>
</body>
</html>
`))
