package common

// CSRFCookieName is the session cookie whose value doubles as the CSRF
// token on write endpoints and on the refresh flow.
const CSRFCookieName = "bili_jct"

// CookieDomain is the registrable domain all session cookies are scoped to.
const CookieDomain = "bilibili.com"

// RefreshSource identifies the web client in cookie refresh form posts.
const RefreshSource = "main_web"
