package theme

// snapshotScript runs inside the page. It receives a Config as its only
// argument and returns the snapshot as a JSON string, which keeps the
// custom-property order intact across the driver bridge.
const snapshotScript = `(cfg) => {
  const read = (el, region) => {
    if (!el || !region) return null;
    const styles = getComputedStyle(el);
    const out = {};
    if (region.className) {
      out.className = typeof el.className === "string" ? el.className : (el.getAttribute("class") || "");
    }
    for (const [group, fields] of Object.entries(region.groups || {})) {
      const values = {};
      for (const field of fields) values[field] = styles[field];
      out[group] = values;
    }
    for (const field of region.extras || []) out[field] = styles[field];
    return out;
  };
  const first = (region) => region ? document.querySelector(region.selector) : null;
  const list = (region) => {
    if (!region) return null;
    const items = [];
    for (const el of document.querySelectorAll(region.selector)) {
      if (region.limit > 0 && items.length >= region.limit) break;
      items.push(read(el, region));
    }
    return items;
  };

  const theme = {
    timestamp: new Date().toISOString(),
    url: window.location.href,
    cssVariables: {},
  };

  const rootStyles = getComputedStyle(document.documentElement);
  for (let i = 0; i < rootStyles.length; i++) {
    const name = rootStyles[i];
    if (name.startsWith("--")) {
      theme.cssVariables[name] = rootStyles.getPropertyValue(name).trim();
    }
  }

  const regions = cfg.regions || {};
  const body = read(first(regions.body), regions.body);
  if (body) theme.body = body;
  const navigation = read(first(regions.navigation), regions.navigation);
  if (navigation) theme.navigation = navigation;

  theme.buttons = list(regions.buttons) || [];

  theme.headings = {};
  if (regions.headings) {
    for (const el of document.querySelectorAll(regions.headings.selector)) {
      const tag = el.tagName.toLowerCase();
      if (!(tag in theme.headings)) theme.headings[tag] = read(el, regions.headings);
    }
  }

  theme.cards = list(regions.cards) || [];
  const links = list(regions.links);
  if (links) theme.links = links;
  const inputs = list(regions.inputs);
  if (inputs) theme.inputs = inputs;

  if (cfg.pageInfo) {
    theme.viewport = {
      width: window.innerWidth,
      height: window.innerHeight,
      devicePixelRatio: window.devicePixelRatio,
    };
    theme.meta = {
      title: document.title,
      url: window.location.href,
      timestamp: new Date().toISOString(),
      userAgent: navigator.userAgent,
    };
  }

  return JSON.stringify(theme);
}`

const probeScript = `(selectors) => {
  const results = {};
  for (const selector of selectors) {
    results[selector] = [];
    document.querySelectorAll(selector).forEach((el) => {
      const styles = getComputedStyle(el);
      results[selector].push({
        innerHTML: el.innerHTML.substring(0, 100),
        styles: {
          backgroundColor: styles.backgroundColor,
          color: styles.color,
          fontSize: styles.fontSize,
          fontWeight: styles.fontWeight,
          padding: styles.padding,
          margin: styles.margin,
          borderRadius: styles.borderRadius,
          boxShadow: styles.boxShadow,
        },
      });
    });
  }
  return JSON.stringify(results);
}`
