package report

const reportTemplateHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: -apple-system, "Segoe UI", Helvetica, Arial, sans-serif; margin: 2rem auto; max-width: 1100px; color: #1f2328; }
h1 { border-bottom: 2px solid #d0d7de; padding-bottom: .4rem; }
h2 { margin-top: 2.2rem; border-bottom: 1px solid #d0d7de; padding-bottom: .3rem; }
table { border-collapse: collapse; width: 100%; margin: .8rem 0; font-size: .88rem; }
th, td { border: 1px solid #d0d7de; padding: .35rem .6rem; text-align: right; }
th { background: #f6f8fa; }
th:first-child, td:first-child { text-align: left; }
.meta { color: #57606a; font-size: .9rem; }
.sig { background: #fff3cd; }
figure { margin: 1.2rem 0; }
figure img { max-width: 100%; border: 1px solid #d0d7de; }
figcaption { color: #57606a; font-size: .85rem; margin-top: .3rem; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<p class="meta">{{.SourcePath}} · sheet {{.Sheet}} · {{.Rows}} rows · generated {{when .GeneratedAt}} · significance level {{num .SignificanceLevel}}</p>

{{if .Profiles}}
<h2>Columns</h2>
<table>
<tr><th>Column</th><th>Role</th><th>Type</th><th>Rows</th><th>Missing %</th><th>Unique ratio</th><th>Warnings</th></tr>
{{range .Profiles}}
<tr><td>{{.Name}}</td><td>{{.Role}}</td><td>{{.Type}}</td><td>{{.Rows}}</td><td>{{num .MissingPct}}</td><td>{{num .UniqueRatio}}</td><td style="text-align:left">{{join .Warnings}}</td></tr>
{{end}}
</table>
{{end}}

{{if .Numeric}}
<h2>Numeric summaries</h2>
<table>
<tr><th>Column</th><th>Count</th><th>Missing</th><th>Mean</th><th>Std</th><th>Min</th><th>Q25</th><th>Median</th><th>Q75</th><th>Max</th><th>Skew</th><th>Kurtosis</th><th>Normality p</th><th>Anderson–Darling</th></tr>
{{range .Numeric}}
<tr><td>{{.Name}}</td><td>{{.Count}}</td><td>{{.Missing}}</td><td>{{num .Mean}}</td><td>{{num .Std}}</td><td>{{num .Min}}</td><td>{{num .Q25}}</td><td>{{num .Median}}</td><td>{{num .Q75}}</td><td>{{num .Max}}</td><td>{{num .Skewness}}</td><td>{{num .Kurtosis}}</td><td>{{pval .NormalityPValue}}</td><td style="text-align:left">{{.AndersonDarling}}</td></tr>
{{end}}
</table>
{{end}}

{{if .Categorical}}
<h2>Categorical summaries</h2>
<table>
<tr><th>Column</th><th>Count</th><th>Missing</th><th>Unique</th><th>Top</th><th>Top freq</th></tr>
{{range .Categorical}}
<tr><td>{{.Name}}</td><td>{{.Count}}</td><td>{{.Missing}}</td><td>{{.Unique}}</td><td>{{.Top}}</td><td>{{.TopFreq}}</td></tr>
{{end}}
</table>
{{end}}

{{if .Datetime}}
<h2>Datetime summaries</h2>
<table>
<tr><th>Column</th><th>Count</th><th>Missing</th><th>Earliest</th><th>Latest</th><th>Range</th></tr>
{{range .Datetime}}
<tr><td>{{.Name}}</td><td>{{.Count}}</td><td>{{.Missing}}</td><td>{{when .Earliest}}</td><td>{{when .Latest}}</td><td>{{.Range}}</td></tr>
{{end}}
</table>
{{end}}

{{if .Correlation.Names}}
<h2>Correlations</h2>
<table>
<tr><th></th>{{range .Correlation.Names}}<th>{{.}}</th>{{end}}</tr>
{{range $i, $row := .Correlation.Values}}
<tr><td>{{index $.Correlation.Names $i}}</td>{{range $row}}<td>{{num .}}</td>{{end}}</tr>
{{end}}
</table>
{{end}}

{{if .Outliers}}
<h2>Outliers (1.5×IQR fences)</h2>
<table>
<tr><th>Column</th><th>Lower fence</th><th>Upper fence</th><th>Flagged rows</th></tr>
{{range .Outliers}}
<tr><td>{{.Name}}</td><td>{{num .LowerFence}}</td><td>{{num .UpperFence}}</td><td>{{len .Outliers}}</td></tr>
{{end}}
</table>
{{end}}

{{if .Tests}}
<h2>Hypothesis tests</h2>
<table>
<tr><th>Test</th><th>Grouping</th><th>Feature</th><th>Levels</th><th>n A</th><th>n B</th><th>Statistic</th><th>p-value</th></tr>
{{range .Tests}}
<tr{{if .Significant}} class="sig"{{end}}><td>{{.Test}}</td><td>{{.Group}}</td><td>{{.Feature}}</td><td>{{.LevelA}} vs {{.LevelB}}</td><td>{{.NA}}</td><td>{{.NB}}</td><td>{{num .Statistic}}</td><td>{{pval .PValue}}</td></tr>
{{end}}
</table>
{{end}}

{{with .Selection}}
<h2>Regression variable selection — target {{.Target}}</h2>
{{if .Forward}}
<h3>Forward steps</h3>
<table>
<tr><th>Predictors</th><th>AIC</th><th>F-test p</th></tr>
{{range .Forward}}
<tr><td>{{join .Predictors}}</td><td>{{num .Criterion}}</td><td>{{pval .PValue}}</td></tr>
{{end}}
</table>
{{end}}
{{if .Backward}}
<h3>Backward steps</h3>
<table>
<tr><th>Predictors</th><th>AIC</th><th>F-test p</th></tr>
{{range .Backward}}
<tr><td>{{join .Predictors}}</td><td>{{num .Criterion}}</td><td>{{pval .PValue}}</td></tr>
{{end}}
</table>
{{end}}
{{if .BestPerSize}}
<h3>Best model per size (exhaustive)</h3>
<table>
<tr><th>Size</th><th>Predictors</th><th>AIC</th><th>F-test p</th></tr>
{{range .BestPerSize}}
<tr><td>{{len .Predictors}}</td><td>{{join .Predictors}}</td><td>{{num .Criterion}}</td><td>{{pval .PValue}}</td></tr>
{{end}}
</table>
{{end}}
{{if .ExhaustiveErr}}<p class="meta">Exhaustive search skipped: {{.ExhaustiveErr}}</p>{{end}}
{{end}}

{{if .Figures}}
<h2>Figures</h2>
{{range .Figures}}
<figure>
<img src="{{.Path}}" alt="{{.Title}}">
<figcaption>{{.Title}}</figcaption>
</figure>
{{end}}
{{end}}

</body>
</html>
`
