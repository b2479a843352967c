package handlers

import (
	"bytes"
	"html/template"
	"net/http"

	"plantstock/internal/auth"
	"plantstock/internal/contextutil"
)

const loginPageHTML = `<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <title>Plantstock - Iniciar sesión</title>
</head>
<body>
  <h1>Plantstock</h1>
  <form id="login">
    <input name="username" placeholder="Usuario" autocomplete="username">
    <input name="password" type="password" placeholder="Contraseña" autocomplete="current-password">
    <button type="submit">Entrar</button>
  </form>
  <p id="status"></p>
  <script>
    document.getElementById('login').addEventListener('submit', async (e) => {
      e.preventDefault();
      const form = new FormData(e.target);
      const res = await fetch('/user/login', {
        method: 'POST',
        headers: {'Content-Type': 'application/json'},
        body: JSON.stringify({username: form.get('username'), password: form.get('password')})
      });
      if (res.ok) { window.location = '/'; return; }
      const body = await res.json();
      document.getElementById('status').textContent = body.error || 'Error';
    });
  </script>
</body>
</html>`

var menuTemplate = template.Must(template.New("menu").Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <title>Plantstock - Menú principal</title>
</head>
<body>
  <h1>Menú principal</h1>
  <p>Sesión: {{.Username}} ({{.Role}})</p>
  <ul>
    <li><a href="/inventory/get_inventory">Inventario</a></li>
    <li><a href="/engineering/numero_parte/list">Números de parte</a></li>
    <li><a href="/inventory/export_inventory">Exportar inventario</a></li>
  </ul>
  <form method="post" action="/user/logout"><button type="submit">Salir</button></form>
</body>
</html>`))

// MenuHandler serves the main menu for authenticated users and redirects
// everyone else to the login page.
type MenuHandler struct{}

// NewMenuHandler creates a MenuHandler.
func NewMenuHandler() *MenuHandler {
	return &MenuHandler{}
}

// ServeHTTP renders the main menu or redirects to /user/manage.
func (h *MenuHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	ident, ok := auth.IdentityFromContext(ctx)
	if !ok {
		http.Redirect(w, r, "/user/manage", http.StatusSeeOther)
		return
	}

	var buf bytes.Buffer
	if err := menuTemplate.Execute(&buf, ident); err != nil {
		logger.ErrorContext(ctx, "failed to render menu", "error", err)
		writeError(w, http.StatusInternalServerError, "an unexpected error occurred")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
