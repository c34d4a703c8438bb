package main

// webUIHTML is the embedded web interface HTML
const webUIHTML = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>BTC Projection</title>
    <link rel="icon" type="image/svg+xml" href="data:image/svg+xml,%3Csvg xmlns='http://www.w3.org/2000/svg' viewBox='0 0 64 64'%3E%3Ccircle cx='32' cy='32' r='30' fill='%23F7931A'/%3E%3Ctext x='19' y='45' font-family='Arial' font-size='38' font-weight='bold' fill='white'%3EB%3C/text%3E%3C/svg%3E">
    <style>
        :root {
            --primary: #1f4e9c;
            --primary-dark: #173b75;
            --accent: #f7931a;
            --danger: #dc2626;
            --success: #16a34a;
            --bg: #f1f5f9;
            --card: #ffffff;
            --text: #1e293b;
            --muted: #64748b;
            --border: #e2e8f0;
        }
        * { box-sizing: border-box; }
        body { margin: 0; font-family: -apple-system, "Segoe UI", Roboto, sans-serif; background: var(--bg); color: var(--text); }
        header { background: var(--primary); color: white; padding: 14px 24px; font-size: 20px; font-weight: 600; }
        header span { color: var(--accent); }
        main { padding: 20px 24px; display: grid; grid-template-columns: 300px 1fr; gap: 20px; }
        .card { background: var(--card); border-radius: 8px; box-shadow: 0 1px 3px rgba(0,0,0,.1); padding: 18px; }
        label { display: block; font-size: 13px; color: var(--muted); margin: 12px 0 4px; }
        .input-row { display: flex; align-items: center; gap: 6px; }
        input { flex: 1; padding: 8px 10px; border: 1px solid var(--border); border-radius: 6px; font-size: 15px; }
        input.invalid { border-color: var(--danger); }
        button { width: 100%; margin-top: 14px; padding: 10px; border: none; border-radius: 6px; font-size: 15px; cursor: pointer; background: var(--primary); color: white; }
        button:hover:not(:disabled) { background: var(--primary-dark); }
        button:disabled { background: #94a3b8; cursor: not-allowed; }
        button.secondary { background: white; color: var(--primary); border: 1px solid var(--primary); }
        #status { margin-top: 16px; font-size: 13px; color: var(--muted); min-height: 36px; }
        #status.error { color: var(--danger); }
        #chart svg { width: 100%; height: auto; }
        #chart .placeholder { color: var(--muted); padding: 80px 0; text-align: center; }
        table { border-collapse: collapse; width: 100%; margin-top: 16px; font-variant-numeric: tabular-nums; font-size: 13px; }
        th { background: var(--primary); color: white; padding: 6px 10px; text-align: right; }
        th:first-child, td:first-child { text-align: left; }
        td { padding: 4px 10px; border-bottom: 1px solid var(--border); text-align: right; }
        tr.annotated td { font-weight: 600; background: #fff7ed; }
    </style>
</head>
<body>
<header><span>&#8383;</span> Bitcoin Projection</header>
<main>
    <section class="card">
        <label for="bear">Bear case annual growth</label>
        <div class="input-row"><input id="bear" inputmode="decimal"> %</div>
        <label for="base">Base case annual growth</label>
        <div class="input-row"><input id="base" inputmode="decimal"> %</div>
        <label for="bull">Bull case annual growth</label>
        <div class="input-row"><input id="bull" inputmode="decimal"> %</div>

        <button id="fetch">Fetch Data</button>
        <button id="plot" disabled>Plot Projections</button>
        <button id="pdf" class="secondary" disabled>Export PDF</button>
        <button id="band" class="secondary" hidden>Cone of Uncertainty</button>

        <div id="status">Loading...</div>
    </section>
    <section class="card">
        <div id="chart"><div class="placeholder">Fetch the current price, then plot the projections.</div></div>
        <div id="table"></div>
    </section>
</main>
<script>
const $ = (id) => document.getElementById(id);

function setStatus(text, isError) {
    $('status').textContent = text || '';
    $('status').className = isError ? 'error' : '';
}

async function api(path, options) {
    const resp = await fetch(path, options);
    let body = {};
    try { body = await resp.json(); } catch (e) { body = { error: 'Unexpected response (' + resp.status + ')' }; }
    return body;
}

function renderTable(headers, rows) {
    let html = '<table><thead><tr>' + headers.map(h => '<th>' + h + '</th>').join('') + '</tr></thead><tbody>';
    for (const row of rows) {
        html += '<tr' + (row.annotated ? ' class="annotated"' : '') + '>' +
            row.cells.map(c => '<td>' + c + '</td>').join('') + '</tr>';
    }
    $('table').innerHTML = html + '</tbody></table>';
}

let currency = '';

async function loadConfig() {
    const cfg = await api('/api/config');
    $('bear').value = cfg.bear;
    $('base').value = cfg.base;
    $('bull').value = cfg.bull;
    currency = cfg.currency;
    $('plot').disabled = !cfg.can_plot;
    $('band').hidden = !cfg.band_available;
    setStatus(cfg.status);
}

$('fetch').addEventListener('click', async () => {
    $('fetch').disabled = true;
    setStatus('Fetching current price...');
    try {
        const res = await api('/api/fetch-price', { method: 'POST' });
        $('plot').disabled = !res.can_plot;
        if (!res.success) {
            setStatus(res.status, true);
            alert('Fetch failed\n\n' + res.error);
            return;
        }
        setStatus(res.status);
    } catch (e) {
        $('plot').disabled = true;
        setStatus('Fetching price failed. Plotting is disabled.', true);
        alert('Fetch failed\n\n' + e);
    } finally {
        $('fetch').disabled = false;
    }
});

$('plot').addEventListener('click', async () => {
    ['bear', 'base', 'bull'].forEach(id => $(id).classList.remove('invalid'));
    try {
        const res = await api('/api/plot', {
            method: 'POST',
            headers: { 'Content-Type': 'application/json' },
            body: JSON.stringify({ bear: $('bear').value, base: $('base').value, bull: $('bull').value })
        });
        if (!res.success) {
            if (res.field) { $(res.field).classList.add('invalid'); }
            alert('Invalid input\n\n' + res.error);
            return;
        }
        $('chart').innerHTML = res.svg;
        renderTable(['Year', 'Bear (' + currency + ')', 'Base (' + currency + ')', 'Bull (' + currency + ')'],
            res.rows.map(r => ({ annotated: r.annotated, cells: [r.year, r.bear, r.base, r.bull] })));
        $('pdf').disabled = false;
        setStatus(res.status);
    } catch (e) {
        setStatus('Plotting failed.', true);
        alert('Plot failed\n\n' + e);
    }
});

$('pdf').addEventListener('click', async () => {
    try {
        const res = await api('/api/export-pdf', { method: 'POST' });
        if (!res.success) {
            alert('Export failed\n\n' + res.message);
            return;
        }
        setStatus(res.message);
        if (confirm(res.message + '\n\nOpen the containing folder?')) {
            await api('/api/open-folder', {
                method: 'POST',
                headers: { 'Content-Type': 'application/json' },
                body: JSON.stringify({ file_path: res.file_path })
            });
        }
    } catch (e) {
        alert('Export failed\n\n' + e);
    }
});

$('band').addEventListener('click', async () => {
    try {
        const res = await api('/api/band');
        if (!res.success) {
            alert('Could not load the forecast CSV\n\n' + res.error);
            return;
        }
        $('chart').innerHTML = res.svg;
        renderTable(['Year', 'Average (' + currency + ')', '+/-', 'Min value', 'Max value'],
            res.rows.map(r => ({ cells: [r.year, r.average, r.percentage, r.min, r.max] })));
    } catch (e) {
        alert('Could not load the forecast CSV\n\n' + e);
    }
});

loadConfig().catch(e => setStatus('Could not load settings: ' + e, true));
</script>
</body>
</html>
`
